package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/salesdash/internal/config"
	"github.com/okian/salesdash/internal/domain/grouping"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.DataDir, convey.ShouldEqual, "")
			convey.So(cfg.RefreshInterval(), convey.ShouldEqual, 30*time.Second)
			convey.So(cfg.LoadTimeout(), convey.ShouldEqual, 5*time.Second)
			convey.So(cfg.Grouping(), convey.ShouldEqual, grouping.Industry)
			convey.So(cfg.AllowedOrigin, convey.ShouldEqual, "*")
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with one invalid setting", t, func() {
		file := filepath.Join(t.TempDir(), "plain.txt")
		convey.So(os.WriteFile(file, []byte("x"), 0o600), convey.ShouldBeNil)

		cases := map[string]func(*config.Config){
			"empty addr":         func(c *config.Config) { c.Addr = "" },
			"negative refresh":   func(c *config.Config) { c.RefreshIntervalMS = -1 },
			"zero load timeout":  func(c *config.Config) { c.LoadTimeoutMS = 0 },
			"unknown log format": func(c *config.Config) { c.LogFormat = "xml" },
			"unknown grouping":   func(c *config.Config) { c.DefaultGrouping = "region" },
			"missing data dir":   func(c *config.Config) { c.DataDir = filepath.Join(t.TempDir(), "nope") },
			"data dir is a file": func(c *config.Config) { c.DataDir = file },
		}
		for _, mutate := range cases {
			cfg := config.New()
			mutate(cfg)
			err := cfg.Validate()
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		}

		convey.Convey("And a zero refresh interval is allowed", func() {
			cfg := config.New()
			cfg.RefreshIntervalMS = 0
			cfg.DataDir = t.TempDir()
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
