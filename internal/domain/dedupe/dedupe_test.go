package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper()

		Convey("Then it starts empty", func() {
			So(d.Size(), ShouldEqual, 0)
		})

		Convey("When an alert key is new", func() {
			seen := d.SeenAndRecord(ctx, dedupe.Key("u-1", "p-1"))

			Convey("Then it is recorded", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When the same pair is seen twice", func() {
			d.SeenAndRecord(ctx, dedupe.Key("u-1", "p-1"))
			seen := d.SeenAndRecord(ctx, dedupe.Key("u-1", "p-1"))

			Convey("Then the second call reports it", func() {
				So(seen, ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When a key is unrecorded", func() {
			d.SeenAndRecord(ctx, dedupe.Key("u-1", "p-1"))
			d.Unrecord(ctx, dedupe.Key("u-1", "p-1"))
			d.Unrecord(ctx, dedupe.Key("u-1", "missing"))

			Convey("Then it can be recorded again", func() {
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, dedupe.Key("u-1", "p-1")), ShouldBeFalse)
			})
		})
	})
}

func TestKeyDoesNotCollide(t *testing.T) {
	Convey("Given pairs whose concatenation is equal", t, func() {
		So(dedupe.Key("ab", "c"), ShouldNotEqual, dedupe.Key("a", "bc"))
	})
}

func TestBoundedEviction(t *testing.T) {
	Convey("Given a deduper bounded to three keys", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
		for i := range 4 {
			d.SeenAndRecord(ctx, fmt.Sprintf("k-%d", i))
		}

		Convey("Then the oldest key was evicted", func() {
			So(d.Size(), ShouldEqual, 3)
			So(d.SeenAndRecord(ctx, "k-3"), ShouldBeTrue)
			So(d.SeenAndRecord(ctx, "k-0"), ShouldBeFalse)
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
		for i := range 1000 {
			d.SeenAndRecord(ctx, fmt.Sprintf("k-%d", i))
		}
		So(d.Size(), ShouldEqual, 1000)
	})
}

func TestConcurrentRecording(t *testing.T) {
	Convey("Given many goroutines racing on one pair", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper()
		var fresh atomic.Int32
		var wg sync.WaitGroup
		for range 64 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if !d.SeenAndRecord(ctx, dedupe.Key("u", "p")) {
					fresh.Add(1)
				}
			}()
		}
		wg.Wait()

		Convey("Then exactly one wins", func() {
			So(fresh.Load(), ShouldEqual, 1)
		})
	})
}
