package repository

import (
	"context"
	"net/url"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/yymzk/calbridge/internal/domain/schedule"
)

func timedEvent(t *testing.T, id string, start, end time.Time) schedule.Schedule {
	t.Helper()
	raw := schedule.SourceEvent{
		ID:         id,
		Version:    "1",
		EventType:  "normal",
		PublicType: "public",
		Detail:     "meeting " + id,
		Timezone:   "UTC",
		Members: []schedule.SourceMember{
			{User: &schedule.MemberRef{ID: "u1", Name: "Alice"}},
		},
		When: &schedule.SourceWhen{
			Datetimes: []schedule.SourcePeriod{{
				Start: start.Format(time.RFC3339),
				End:   end.Format(time.RFC3339),
			}},
		},
	}
	sched, err := schedule.FromSourceEvent(raw)
	if err != nil {
		t.Fatalf("fixture %s: %v", id, err)
	}
	return sched
}

func allDayEvent(t *testing.T, id, start, end string) schedule.Schedule {
	t.Helper()
	raw := schedule.SourceEvent{
		ID:         id,
		Version:    "1",
		EventType:  "banner",
		PublicType: "public",
		Detail:     "offsite " + id,
		Timezone:   "Asia/Tokyo",
		Members: []schedule.SourceMember{
			{User: &schedule.MemberRef{ID: "u1", Name: "Alice"}},
		},
		When: &schedule.SourceWhen{
			Dates: []schedule.SourcePeriod{{Start: start, End: end}},
		},
	}
	sched, err := schedule.FromSourceEvent(raw)
	if err != nil {
		t.Fatalf("fixture %s: %v", id, err)
	}
	return sched
}

func mustStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore("")
	if err != nil {
		t.Fatalf("open in-memory store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()

	Convey("Given a cached timed schedule", t, func() {
		store := mustStore(t)
		orig := timedEvent(t, "100",
			time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
			time.Date(2026, 9, 1, 11, 0, 0, 0, time.UTC))
		So(store.Set(ctx, orig), ShouldBeNil)

		Convey("When it is read back", func() {
			got, err := store.Get(ctx, "100")

			Convey("Then it renders an identical target event", func() {
				So(err, ShouldBeNil)
				So(got, ShouldNotBeNil)
				page, _ := url.Parse("http://groupware.example.com/view")
				So(got.ToTargetEvent(page), ShouldResemble, orig.ToTargetEvent(page))
			})
		})

		Convey("When it is overwritten with a newer version", func() {
			next := orig
			next.Version = "2"
			next.Raw.Version = "2"
			So(store.Set(ctx, next), ShouldBeNil)

			Convey("Then the cache holds exactly the newer copy", func() {
				got, err := store.Get(ctx, "100")
				So(err, ShouldBeNil)
				So(got.Version, ShouldEqual, "2")
			})
		})
	})

	Convey("Given an empty store", t, func() {
		store := mustStore(t)

		Convey("When an unknown id is read", func() {
			got, err := store.Get(ctx, "missing")

			Convey("Then absence is not an error", func() {
				So(err, ShouldBeNil)
				So(got, ShouldBeNil)
			})
		})

		Convey("When an unknown id is removed", func() {
			So(store.Remove(ctx, "missing"), ShouldBeNil)
		})
	})

	Convey("Given a removed schedule", t, func() {
		store := mustStore(t)
		orig := timedEvent(t, "100",
			time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
			time.Date(2026, 9, 1, 11, 0, 0, 0, time.UTC))
		So(store.Set(ctx, orig), ShouldBeNil)
		So(store.Remove(ctx, "100"), ShouldBeNil)

		Convey("Then it is gone", func() {
			got, err := store.Get(ctx, "100")
			So(err, ShouldBeNil)
			So(got, ShouldBeNil)
		})
	})

	Convey("Given an all-day schedule", t, func() {
		store := mustStore(t)
		orig := allDayEvent(t, "200", "2026-09-10", "2026-09-12")
		So(store.Set(ctx, orig), ShouldBeNil)

		Convey("When it is read back", func() {
			got, err := store.Get(ctx, "200")

			Convey("Then the all-day shape survives", func() {
				So(err, ShouldBeNil)
				So(got.Start.HasTime, ShouldBeFalse)
				So(got.End.HasTime, ShouldBeFalse)
				page, _ := url.Parse("http://groupware.example.com/view")
				So(got.ToTargetEvent(page), ShouldResemble, orig.ToTargetEvent(page))
			})
		})
	})
}

func TestSQLiteStoreFindInRange(t *testing.T) {
	ctx := context.Background()

	ids := func(scheds []schedule.Schedule) []string {
		out := make([]string, 0, len(scheds))
		for _, s := range scheds {
			out = append(out, s.ID)
		}
		return out
	}

	Convey("Given schedules around a query window", t, func() {
		store := mustStore(t)
		day := func(d, h int) time.Time {
			return time.Date(2026, 9, d, h, 0, 0, 0, time.UTC)
		}
		fixtures := []schedule.Schedule{
			timedEvent(t, "inside", day(12, 10), day(12, 11)),
			timedEvent(t, "after", day(25, 10), day(25, 11)),
			timedEvent(t, "before", day(2, 10), day(2, 11)),
			timedEvent(t, "spanning", day(5, 10), day(20, 11)),
		}
		for _, f := range fixtures {
			So(store.Set(ctx, f), ShouldBeNil)
		}

		lo := schedule.NewAllDay(day(10, 0))
		hi := schedule.NewAllDay(day(15, 0))

		Convey("When the window is queried", func() {
			got, err := store.FindInRange(ctx, lo, hi)
			So(err, ShouldBeNil)

			Convey("Then events starting at or after the window start match", func() {
				So(ids(got), ShouldContain, "inside")
				So(ids(got), ShouldContain, "after")
			})

			Convey("Then events ending before the window end match", func() {
				So(ids(got), ShouldContain, "before")
			})

			Convey("Then an interval containing the whole window matches neither arm", func() {
				So(ids(got), ShouldNotContain, "spanning")
			})

			Convey("Then results come back ordered by start key", func() {
				So(ids(got), ShouldResemble, []string{"before", "inside", "after"})
			})
		})
	})
}
