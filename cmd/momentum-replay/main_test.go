package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/momentum/internal/adapters/http/api"
	service "github.com/okian/momentum/internal/app"
	"github.com/okian/momentum/internal/replay"
	"github.com/smartystreets/goconvey/convey"
)

func execute(args ...string) (string, error) {
	var out, logs bytes.Buffer
	cmd := newRootCmd(&out, &logs)
	cmd.SetArgs(args)
	cmd.SetErr(&logs)
	err := cmd.Execute()
	return out.String(), err
}

func TestSimulateCommand(t *testing.T) {
	convey.Convey("Given the simulate command", t, func() {
		convey.Convey("When run with a seed", func() {
			out, err := execute("simulate", "--events", "40", "--seed", "9")

			convey.Convey("Then it should print a summary", func() {
				convey.So(err, convey.ShouldBeNil)
				var sum replay.Summary
				convey.So(json.Unmarshal([]byte(out), &sum), convey.ShouldBeNil)
				convey.So(sum.Events, convey.ShouldEqual, 40)
			})

			convey.Convey("And the same seed should print the same summary", func() {
				again, err := execute("simulate", "--events", "40", "--seed", "9")
				convey.So(err, convey.ShouldBeNil)
				convey.So(again, convey.ShouldEqual, out)
			})
		})

		convey.Convey("When asked for the script only", func() {
			out, err := execute("simulate", "--events", "5", "--script")

			convey.Convey("Then it should print a parseable script", func() {
				convey.So(err, convey.ShouldBeNil)
				s, err := replay.ParseScript([]byte(out))
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(s.Events), convey.ShouldEqual, 5)
			})
		})

		convey.Convey("When the event count is negative", func() {
			_, err := execute("simulate", "--events", "-1")
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestReplayCommand(t *testing.T) {
	convey.Convey("Given a script file", t, func() {
		path := filepath.Join(t.TempDir(), "match.yaml")
		var buf bytes.Buffer
		convey.So(replay.WriteScript(&buf, replay.Generate(12, 2)), convey.ShouldBeNil)
		convey.So(os.WriteFile(path, buf.Bytes(), 0o600), convey.ShouldBeNil)

		convey.Convey("When replayed as JSON", func() {
			out, err := execute("replay", "--file", path, "--horizon", "5")

			convey.Convey("Then every step and the forecast should be printed", func() {
				convey.So(err, convey.ShouldBeNil)
				var res replay.Result
				convey.So(json.Unmarshal([]byte(out), &res), convey.ShouldBeNil)
				convey.So(len(res.Steps), convey.ShouldEqual, 12)
				convey.So(res.Forecast.Horizon, convey.ShouldEqual, 5)
			})
		})

		convey.Convey("When the output format is unknown", func() {
			_, err := execute("replay", "--file", path, "--output", "table")
			convey.So(err, convey.ShouldNotBeNil)
		})
	})

	convey.Convey("Given no file flag", t, func() {
		_, err := execute("replay")
		convey.So(err, convey.ShouldNotBeNil)
	})

	convey.Convey("Given a missing file", t, func() {
		_, err := execute("replay", "--file", filepath.Join(t.TempDir(), "nope.yaml"))
		convey.So(err, convey.ShouldNotBeNil)
	})
}

func TestPushCommand(t *testing.T) {
	convey.Convey("Given a running momentum server", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithWorkerCount(2))
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		mux := http.NewServeMux()
		api.NewServer(svc, svc).Register(ctx, mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		convey.Convey("When a generated match is pushed", func() {
			out, err := execute("push", "--events", "30", "--seed", "4", "--url", srv.URL)

			convey.Convey("Then the counts and the final report should be printed", func() {
				convey.So(err, convey.ShouldBeNil)
				var got pushOutput
				convey.So(json.Unmarshal([]byte(out), &got), convey.ShouldBeNil)
				convey.So(got.Push.Accepted, convey.ShouldEqual, 30)
				convey.So(got.Push.Failed, convey.ShouldEqual, 0)
				convey.So(got.Report.InsufficientData, convey.ShouldBeFalse)
				convey.So(got.Report.Snapshots, convey.ShouldEqual, 30)
			})
		})

		convey.Convey("When a script file is pushed twice", func() {
			path := filepath.Join(t.TempDir(), "match.yaml")
			var buf bytes.Buffer
			convey.So(replay.WriteScript(&buf, replay.Generate(8, 5)), convey.ShouldBeNil)
			convey.So(os.WriteFile(path, buf.Bytes(), 0o600), convey.ShouldBeNil)

			_, first := execute("push", "--file", path, "--url", srv.URL)
			_, second := execute("push", "--file", path, "--url", srv.URL)

			convey.Convey("Then the second push should fail on the existing match", func() {
				convey.So(first, convey.ShouldBeNil)
				convey.So(second, convey.ShouldNotBeNil)
			})
		})
	})
}
