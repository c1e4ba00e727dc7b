package source

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/yymzk/calbridge/internal/domain/schedule"
)

func TestGetEvents(t *testing.T) {
	ctx := context.Background()

	Convey("Given a source API serving two events", t, func() {
		var gotQuery map[string]string
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = map[string]string{
				"start":   r.URL.Query().Get("start"),
				"end":     r.URL.Query().Get("end"),
				"all_day": r.URL.Query().Get("all_day"),
			}
			json.NewEncoder(w).Encode(map[string]any{
				"events": []schedule.SourceEvent{
					{ID: "1", Version: "10", EventType: "normal"},
					{ID: "2", Version: "20", EventType: "banner"},
				},
			})
		}))
		Reset(ts.Close)

		client, err := NewHTTPClient(ts.URL)
		So(err, ShouldBeNil)

		Convey("When the window is fetched", func() {
			start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
			end := start.AddDate(0, 1, 0)
			events, err := client.GetEvents(ctx, start, end, true)

			Convey("Then the events and query parameters line up", func() {
				So(err, ShouldBeNil)
				So(events, ShouldHaveLength, 2)
				So(events[0].ID, ShouldEqual, "1")
				So(gotQuery["start"], ShouldEqual, "2026-09-01T00:00:00Z")
				So(gotQuery["end"], ShouldEqual, "2026-10-01T00:00:00Z")
				So(gotQuery["all_day"], ShouldEqual, "true")
			})
		})
	})

	Convey("Given a source API that errors", t, func() {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		Reset(ts.Close)

		client, err := NewHTTPClient(ts.URL)
		So(err, ShouldBeNil)

		Convey("When the window is fetched", func() {
			_, err := client.GetEvents(ctx, time.Now(), time.Now().Add(time.Hour), true)

			Convey("Then the failure is marked retryable", func() {
				So(errors.Is(err, ErrFetch), ShouldBeTrue)
			})
		})
	})
}

func TestGetEventByID(t *testing.T) {
	ctx := context.Background()

	Convey("Given a source API knowing one event", t, func() {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/events/42" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			json.NewEncoder(w).Encode(schedule.SourceEvent{ID: "42", Version: "7", EventType: "normal"})
		}))
		Reset(ts.Close)

		client, err := NewHTTPClient(ts.URL)
		So(err, ShouldBeNil)

		Convey("When the known id is fetched", func() {
			ev, err := client.GetEventByID(ctx, "42")
			So(err, ShouldBeNil)
			So(ev, ShouldNotBeNil)
			So(ev.Version, ShouldEqual, "7")
		})

		Convey("When an unknown id is fetched", func() {
			ev, err := client.GetEventByID(ctx, "43")

			Convey("Then absence is reported without an error", func() {
				So(err, ShouldBeNil)
				So(ev, ShouldBeNil)
			})
		})
	})
}
