package config_test

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/okian/momentum/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.EventQueueSize, convey.ShouldEqual, 50_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 200_000)
			convey.So(cfg.MaxMatches, convey.ShouldEqual, 1_000)
			convey.So(cfg.MaxForecastHorizon, convey.ShouldEqual, 30)
			convey.So(cfg.RedisAddr, convey.ShouldBeEmpty)
			convey.So(cfg.RedisStreamPrefix, convey.ShouldEqual, "momentum")
		})

		convey.Convey("Then the defaults should validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a config with invalid fields", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("When the forecast horizon cap is negative", func() {
			cfg.MaxForecastHorizon = -1
			err := cfg.Validate()

			convey.Convey("Then it should be rejected as invalid", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the log format is unknown", func() {
			cfg.LogFormat = "xml"
			err := cfg.Validate()

			convey.Convey("Then it should be rejected as invalid", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "log_format")
			})
		})
	})
}
