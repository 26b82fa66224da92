package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.MaxLimit, convey.ShouldEqual, 50)
				convey.So(cfg.SweepSchedule, convey.ShouldEqual, "@every 1h")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("VAGAS_ADDR", ":8080")
			_ = os.Setenv("VAGAS_WEIGHT_AREA", "50")
			_ = os.Setenv("VAGAS_MAX_LIMIT", "20")
			_ = os.Setenv("VAGAS_REDIS_URL", "redis://localhost:6379/0")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.WeightArea, convey.ShouldEqual, 50)
				convey.So(cfg.MaxLimit, convey.ShouldEqual, 20)
				convey.So(cfg.RedisURL, convey.ShouldEqual, "redis://localhost:6379/0")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile(`
addr: ":9090"
worker_count: 24
weight_salary: 20
timezone: "UTC"
`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("VAGAS_CONFIG", tmpFile)
			_ = os.Setenv("VAGAS_WORKER_COUNT", "32")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 32)
				convey.So(cfg.WeightSalary, convey.ShouldEqual, 20)
				convey.So(cfg.WeightCountry, convey.ShouldEqual, 40)
				convey.So(cfg.Timezone, convey.ShouldEqual, "UTC")
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("VAGAS_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("VAGAS_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("VAGAS_MAX_LIMIT", "many")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When a .env file provides values", func() {
			tmpFile := createTempConfigFile("VAGAS_ADDR=:7070\nVAGAS_MAX_LIMIT=30\n")
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("VAGAS_ENV_FILE", tmpFile)
			_ = os.Setenv("VAGAS_MAX_LIMIT", "40")

			cfg, err := config.Load(ctx)

			convey.Convey("Then they fill in without overriding the process env", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.MaxLimit, convey.ShouldEqual, 40)
			})
		})

		convey.Convey("When an explicit .env file is missing", func() {
			_ = os.Setenv("VAGAS_ENV_FILE", "/non/existent/.env")

			_, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the loaded config fails validation", func() {
			_ = os.Setenv("VAGAS_STORE", "postgres")

			cfg, err := config.Load(ctx)

			convey.Convey("Then the validation error is returned", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func clearConfigEnvVars() {
	for _, key := range []string{
		"VAGAS_CONFIG", "VAGAS_ADDR", "VAGAS_WEIGHT_AREA", "VAGAS_MAX_LIMIT",
		"VAGAS_REDIS_URL", "VAGAS_WORKER_COUNT", "VAGAS_STORE", "VAGAS_ENV_FILE",
	} {
		_ = os.Unsetenv(key)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "vagas-config-*.yaml")
	if err != nil {
		panic(err)
	}
	defer func() { _ = tmpFile.Close() }()
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
