package replay

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/momentum/internal/domain/momentum"
	"github.com/smartystreets/goconvey/convey"
)

const derbyYAML = `
match_id: derby
config:
  home_team: Reds
  away_team: Blues
  home_strength: 0.7
events:
  - {id: a, type: goal, side: home, minute: 3}
  - {type: corner, side: away, minute: 9}
  - {type: save, side: home, minute: 10}
`

func TestParseScript(t *testing.T) {
	convey.Convey("Given a YAML match script", t, func() {
		s, err := ParseScript([]byte(derbyYAML))

		convey.Convey("Then it should parse with defaults for omitted factors", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(s.MatchID, convey.ShouldEqual, "derby")
			convey.So(s.Config.HomeTeam, convey.ShouldEqual, "Reds")
			convey.So(s.Config.HomeStrength, convey.ShouldEqual, 0.7)
			convey.So(s.Config.AwayStrength, convey.ShouldEqual, 0.5)
			convey.So(s.Config.CrowdFactor, convey.ShouldEqual, 0.5)
		})

		convey.Convey("Then missing event ids should default to positions", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(len(s.Events), convey.ShouldEqual, 3)
			convey.So(s.Events[0].ID, convey.ShouldEqual, "a")
			convey.So(s.Events[1].ID, convey.ShouldEqual, "2")
			convey.So(s.Events[2].Minute, convey.ShouldEqual, 10)
		})
	})

	convey.Convey("Given invalid scripts", t, func() {
		convey.Convey("When the YAML is malformed", func() {
			_, err := ParseScript([]byte("events: [oops"))
			convey.So(errors.Is(err, ErrInvalidScript), convey.ShouldBeTrue)
		})

		convey.Convey("When a factor is out of range", func() {
			_, err := ParseScript([]byte("config: {crowd_factor: 1.5}"))
			convey.So(errors.Is(err, ErrInvalidScript), convey.ShouldBeTrue)
			convey.So(errors.Is(err, momentum.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When an event has no valid side", func() {
			_, err := ParseScript([]byte("events: [{type: goal, side: both, minute: 1}]"))
			convey.So(errors.Is(err, momentum.ErrInvalidSide), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "event 1")
		})

		convey.Convey("When an event has a negative minute", func() {
			_, err := ParseScript([]byte("events: [{type: goal, side: home, minute: -2}]"))
			convey.So(errors.Is(err, momentum.ErrInvalidMinute), convey.ShouldBeTrue)
		})
	})
}

func TestLoadScript(t *testing.T) {
	convey.Convey("Given a script file on disk", t, func() {
		path := filepath.Join(t.TempDir(), "derby.yaml")
		convey.So(os.WriteFile(path, []byte(derbyYAML), 0o600), convey.ShouldBeNil)

		convey.Convey("Then it should load", func() {
			s, err := LoadScript(path)
			convey.So(err, convey.ShouldBeNil)
			convey.So(s.MatchID, convey.ShouldEqual, "derby")
		})
	})

	convey.Convey("Given a missing file", t, func() {
		_, err := LoadScript(filepath.Join(t.TempDir(), "missing.yaml"))

		convey.Convey("Then it should fail to read", func() {
			convey.So(errors.Is(err, ErrReadScript), convey.ShouldBeTrue)
		})
	})
}

func TestWriteScript(t *testing.T) {
	convey.Convey("Given a generated script written as YAML", t, func() {
		orig := Generate(25, 4)
		var buf bytes.Buffer
		convey.So(WriteScript(&buf, orig), convey.ShouldBeNil)

		convey.Convey("Then parsing it back should give the same script", func() {
			back, err := ParseScript(buf.Bytes())
			convey.So(err, convey.ShouldBeNil)
			convey.So(back, convey.ShouldResemble, orig)
		})
	})
}
