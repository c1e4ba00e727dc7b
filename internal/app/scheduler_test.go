package syncer

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestScheduler(t *testing.T) {
	Convey("Given a started scheduler with a long interval", t, func() {
		var runs atomic.Int32
		s := NewScheduler(time.Hour, func(context.Context) error { runs.Add(1); return nil })
		s.Start()
		Reset(func() { <-s.Stop().Done() })

		Convey("When triggered manually", func() {
			s.TriggerNow(context.Background())

			Convey("Then the job runs synchronously", func() {
				So(runs.Load(), ShouldEqual, 1)
			})
		})

		Convey("When triggered twice in a row", func() {
			s.TriggerNow(context.Background())
			s.TriggerNow(context.Background())

			Convey("Then each trigger runs exactly once", func() {
				So(runs.Load(), ShouldEqual, 2)
			})
		})

		Convey("When started again", func() {
			s.Start()
			s.TriggerNow(context.Background())

			Convey("Then the second start is a no-op", func() {
				So(runs.Load(), ShouldEqual, 1)
			})
		})
	})

	Convey("Given a stopped scheduler", t, func() {
		var runs atomic.Int32
		s := NewScheduler(time.Hour, func(context.Context) error { runs.Add(1); return nil })
		s.Start()
		<-s.Stop().Done()

		Convey("When triggered manually", func() {
			s.TriggerNow(context.Background())

			Convey("Then the manual run still executes", func() {
				So(runs.Load(), ShouldEqual, 1)
			})
		})
	})
}
