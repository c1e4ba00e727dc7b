package stubsource

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/yymzk/calbridge/internal/domain/schedule"
)

func TestGenerate(t *testing.T) {
	Convey("Given a generated event set", t, func() {
		events := Generate(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), 25)

		Convey("Then every event normalizes cleanly", func() {
			So(events, ShouldHaveLength, 25)
			for _, ev := range events {
				_, err := schedule.FromSourceEvent(ev)
				So(err, ShouldBeNil)
			}
		})

		Convey("Then the mix includes recurring and all-day shapes", func() {
			var repeats, banners int
			for _, ev := range events {
				if ev.RepeatInfo != nil {
					repeats++
				}
				if ev.EventType == "banner" {
					banners++
				}
			}
			So(repeats, ShouldBeGreaterThan, 0)
			So(banners, ShouldBeGreaterThan, 0)
		})
	})
}

func TestServer(t *testing.T) {
	Convey("Given a stub server over three events", t, func() {
		events := Generate(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), 3)
		srv := NewServer(events)
		mux := http.NewServeMux()
		srv.Register(mux)
		ts := httptest.NewServer(mux)
		Reset(ts.Close)

		Convey("When the window is listed", func() {
			resp, err := http.Get(ts.URL + "/events")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			var envelope struct {
				Events []schedule.SourceEvent `json:"events"`
			}
			So(json.NewDecoder(resp.Body).Decode(&envelope), ShouldBeNil)
			So(envelope.Events, ShouldHaveLength, 3)
		})

		Convey("When one event is fetched by id", func() {
			resp, err := http.Get(ts.URL + "/events/" + events[0].ID)
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
		})

		Convey("When a dropped event is fetched", func() {
			srv.Drop(events[0].ID)
			resp, err := http.Get(ts.URL + "/events/" + events[0].ID)
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the source reports it gone", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When an event's version is bumped", func() {
			srv.Bump(events[1].ID, "2")
			resp, err := http.Get(ts.URL + "/events/" + events[1].ID)
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			var ev schedule.SourceEvent
			So(json.NewDecoder(resp.Body).Decode(&ev), ShouldBeNil)
			So(ev.Version, ShouldEqual, "2")
		})
	})
}
