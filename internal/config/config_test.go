package config_test

import (
	"errors"
	"runtime"
	"testing"

	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with defaults", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.Store, convey.ShouldEqual, config.StoreMemory)
			convey.So(cfg.WeightCountry, convey.ShouldEqual, 40)
			convey.So(cfg.WeightArea, convey.ShouldEqual, 30)
			convey.So(cfg.WeightSalary, convey.ShouldEqual, 15)
			convey.So(cfg.WeightLevel, convey.ShouldEqual, 8)
			convey.So(cfg.WeightEmploymentType, convey.ShouldEqual, 4)
			convey.So(cfg.WeightRemote, convey.ShouldEqual, 3)
			convey.So(cfg.OversampleFactor, convey.ShouldEqual, 5)
			convey.So(cfg.FreePlanDailyLimit, convey.ShouldEqual, 5)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*2)
			convey.So(cfg.AlertChannel, convey.ShouldEqual, "EVENT_PRIORITY_ALERT")
		})

		convey.Convey("Then it should validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New()

		convey.Convey("When a weight is negative", func() {
			cfg.WeightArea = -1

			convey.Convey("Then validation fails", func() {
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "weight_area")
			})
		})

		convey.Convey("When every weight is zero", func() {
			cfg.WeightCountry, cfg.WeightArea, cfg.WeightSalary = 0, 0, 0
			cfg.WeightLevel, cfg.WeightEmploymentType, cfg.WeightRemote = 0, 0, 0

			convey.Convey("Then validation passes", func() {
				convey.So(cfg.Validate(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the postgres store has no URL", func() {
			cfg.Store = config.StorePostgres

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the store is unknown", func() {
			cfg.Store = "mongo"

			convey.Convey("Then validation fails", func() {
				convey.So(cfg.Validate(), convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When default_limit exceeds max_limit", func() {
			cfg.DefaultLimit = 100

			convey.Convey("Then validation fails", func() {
				convey.So(cfg.Validate(), convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When the timezone does not exist", func() {
			cfg.Timezone = "Mars/Olympus"

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the timezone is empty", func() {
			cfg.Timezone = ""

			convey.Convey("Then UTC is used", func() {
				loc, err := cfg.Location()
				convey.So(err, convey.ShouldBeNil)
				convey.So(loc.String(), convey.ShouldEqual, "UTC")
			})
		})
	})
}
