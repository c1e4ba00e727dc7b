package syncer

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestTracker(t *testing.T) {
	Convey("Given a fresh tracker", t, func() {
		tr := NewTracker()

		Convey("Then it starts idle with an empty ratio", func() {
			So(tr.State(), ShouldResemble, State{
				Phase:    PhaseInitial,
				Result:   ResultUnknown,
				Progress: Progress{Num: 0, Den: 1},
			})
		})

		Convey("When a fetch phase starts", func() {
			tr.startFetch()

			Convey("Then the result resets to unknown", func() {
				st := tr.State()
				So(st.Phase, ShouldEqual, PhaseFetchingSource)
				So(st.Result, ShouldEqual, ResultUnknown)
			})
		})

		Convey("When the target phase runs over five items", func() {
			tr.startFetch()
			tr.startTarget(5)
			tr.setProgress(3, 5)

			Convey("Then the ratio reflects the position", func() {
				So(tr.State().Progress, ShouldResemble, Progress{Num: 3, Den: 5})
			})
		})

		Convey("When the target phase has zero items", func() {
			tr.startTarget(0)

			Convey("Then the denominator stays positive", func() {
				So(tr.State().Progress.Den, ShouldEqual, 1)
			})
		})

		Convey("When a cycle ends successfully", func() {
			now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
			tr.endCycle(ResultSuccess, &now)

			Convey("Then the sync time is recorded and the tracker idles", func() {
				st := tr.State()
				So(st.Phase, ShouldEqual, PhaseInitial)
				So(st.Result, ShouldEqual, ResultSuccess)
				So(*st.LastSyncTime, ShouldEqual, now)
			})

			Convey("And a later failed cycle keeps the old sync time", func() {
				tr.startFetch()
				tr.endCycle(ResultFailed, nil)
				st := tr.State()
				So(st.Result, ShouldEqual, ResultFailed)
				So(*st.LastSyncTime, ShouldEqual, now)
			})
		})

		Convey("When an observer subscribes", func() {
			var seen []Phase
			tr.Subscribe(func(s State) { seen = append(seen, s.Phase) })
			tr.startFetch()
			tr.endCycle(ResultFailed, nil)

			Convey("Then it sees every transition in order", func() {
				So(seen, ShouldResemble, []Phase{PhaseFetchingSource, PhaseInitial})
			})
		})
	})
}
