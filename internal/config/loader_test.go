package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/JericNisperos/pvparena/internal/config"
	"github.com/JericNisperos/pvparena/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func initLogger(t *testing.T) {
	t.Helper()
	if err := logger.Init(); err != nil {
		t.Fatalf("logger init: %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	initLogger(t)

	Convey("Given no file and no environment overrides", t, func() {
		cfg, err := config.Load(context.Background())

		Convey("Then the defaults come through", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":9080")
			So(cfg.KFactor, ShouldAlmostEqual, 24.0, 1e-9)
			So(cfg.InitialRating, ShouldAlmostEqual, 1000.0, 1e-9)
		})
	})
}

func TestLoadEnvOverrides(t *testing.T) {
	initLogger(t)
	t.Setenv("PVPA_K_FACTOR", "32")
	t.Setenv("PVPA_PER_ARENA", "true")
	t.Setenv("PVPA_QUEUE_SIZE", "123")

	Convey("Given environment overrides", t, func() {
		cfg, err := config.Load(context.Background())

		Convey("Then they win over the defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.KFactor, ShouldAlmostEqual, 32.0, 1e-9)
			So(cfg.PerArena, ShouldBeTrue)
			So(cfg.QueueSize, ShouldEqual, 123)
		})
	})
}

func TestLoadFromFile(t *testing.T) {
	initLogger(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("k_factor: 40\ndb_path: /tmp/ratings.db\n"), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("PVPA_CONFIG", path)

	Convey("Given a YAML config file", t, func() {
		cfg, err := config.Load(context.Background())

		Convey("Then file values override the defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.KFactor, ShouldAlmostEqual, 40.0, 1e-9)
			So(cfg.DBPath, ShouldEqual, "/tmp/ratings.db")
		})
	})
}

func TestLoadEnvWinsOverFile(t *testing.T) {
	initLogger(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("k_factor: 40\n"), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("PVPA_CONFIG", path)
	t.Setenv("PVPA_K_FACTOR", "48")

	Convey("Given a file value and an env value for the same key", t, func() {
		cfg, err := config.Load(context.Background())

		Convey("Then the environment wins", func() {
			So(err, ShouldBeNil)
			So(cfg.KFactor, ShouldAlmostEqual, 48.0, 1e-9)
		})
	})
}

func TestLoadOutOfRangeValues(t *testing.T) {
	initLogger(t)
	t.Setenv("PVPA_K_FACTOR", "500")
	t.Setenv("PVPA_INITIAL_RATING", "-50")

	Convey("Given out-of-range rating parameters", t, func() {
		cfg, err := config.Load(context.Background())

		Convey("Then the defaults are used instead", func() {
			So(err, ShouldBeNil)
			So(cfg.KFactor, ShouldAlmostEqual, 24.0, 1e-9)
			So(cfg.InitialRating, ShouldAlmostEqual, 1000.0, 1e-9)
		})
	})
}

func TestLoadMissingFile(t *testing.T) {
	initLogger(t)
	t.Setenv("PVPA_CONFIG", "/nonexistent/config.yaml")

	Convey("Given a config path that does not exist", t, func() {
		_, err := config.Load(context.Background())

		Convey("Then the load fails", func() {
			So(err, ShouldNotBeNil)
		})
	})
}
