package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/salesdash/internal/config"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars(t)

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			t.Setenv("SALESDASH_ADDR", ":8080")
			t.Setenv("SALESDASH_LOG_FORMAT", "json")
			t.Setenv("SALESDASH_REFRESH_INTERVAL_MS", "0")
			t.Setenv("SALESDASH_LOAD_TIMEOUT_MS", "1500")
			t.Setenv("SALESDASH_DEFAULT_GROUPING", "team")
			t.Setenv("SALESDASH_ALLOWED_ORIGIN", "https://bi.example.com")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.RefreshIntervalMS, convey.ShouldEqual, 0)
				convey.So(cfg.LoadTimeoutMS, convey.ShouldEqual, 1500)
				convey.So(cfg.DefaultGrouping, convey.ShouldEqual, "team")
				convey.So(cfg.AllowedOrigin, convey.ShouldEqual, "https://bi.example.com")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			dataDir := t.TempDir()
			path := writeConfigFile(t, `
addr: ":9090"
log_level: debug
data_dir: "`+dataDir+`"
refresh_interval_ms: 60000
default_grouping: acv_range
`)
			t.Setenv("SALESDASH_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.DataDir, convey.ShouldEqual, dataDir)
				convey.So(cfg.RefreshIntervalMS, convey.ShouldEqual, 60000)
				convey.So(cfg.DefaultGrouping, convey.ShouldEqual, "acv_range")
				convey.So(cfg.LoadTimeoutMS, convey.ShouldEqual, 5000)
			})

			convey.Convey("And env vars should win over the file", func() {
				t.Setenv("SALESDASH_ADDR", ":7070")
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
			})
		})

		convey.Convey("When the config file is missing", func() {
			t.Setenv("SALESDASH_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

			_, err := config.Load(ctx)

			convey.Convey("Then it should fail with a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the config file is not YAML", func() {
			t.Setenv("SALESDASH_CONFIG", writeConfigFile(t, "addr: [unterminated"))

			_, err := config.Load(ctx)

			convey.Convey("Then it should fail with a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a setting is invalid", func() {
			t.Setenv("SALESDASH_DEFAULT_GROUPING", "region")

			_, err := config.Load(ctx)

			convey.Convey("Then it should fail validation", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func clearConfigEnvVars(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"SALESDASH_CONFIG", "SALESDASH_ADDR", "SALESDASH_LOG_LEVEL", "SALESDASH_LOG_FORMAT",
		"SALESDASH_DATA_DIR", "SALESDASH_REFRESH_INTERVAL_MS", "SALESDASH_LOAD_TIMEOUT_MS",
		"SALESDASH_DEFAULT_GROUPING", "SALESDASH_ALLOWED_ORIGIN",
	} {
		t.Setenv(name, "")
		_ = os.Unsetenv(name)
	}
}
