package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	syncer "github.com/yymzk/calbridge/internal/app"
)

type fakeTrigger struct {
	err   error
	calls int
}

func (f *fakeTrigger) TriggerNow(ctx context.Context) error {
	f.calls++
	return f.err
}

func newTestServer(trigger *fakeTrigger) *httptest.Server {
	srv := NewServer(syncer.NewTracker(), trigger)
	mux := http.NewServeMux()
	srv.Register(mux)
	return httptest.NewServer(mux)
}

func TestOperationalRoutes(t *testing.T) {
	Convey("Given the operational HTTP surface", t, func() {
		trigger := &fakeTrigger{}
		ts := newTestServer(trigger)
		Reset(ts.Close)

		Convey("When /healthz is fetched", func() {
			resp, err := http.Get(ts.URL + "/healthz")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then it acknowledges liveness", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				var body map[string]string
				So(json.NewDecoder(resp.Body).Decode(&body), ShouldBeNil)
				So(body["status"], ShouldEqual, "ok")
			})
		})

		Convey("When /status is fetched before any cycle", func() {
			resp, err := http.Get(ts.URL + "/status")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then it reports the idle state", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				var st syncer.State
				So(json.NewDecoder(resp.Body).Decode(&st), ShouldBeNil)
				So(st.Phase, ShouldEqual, syncer.PhaseInitial)
				So(st.Result, ShouldEqual, syncer.ResultUnknown)
				So(st.LastSyncTime, ShouldBeNil)
			})
		})

		Convey("When /metrics is fetched", func() {
			resp, err := http.Get(ts.URL + "/metrics")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
		})

		Convey("When /sync is posted", func() {
			resp, err := http.Post(ts.URL+"/sync", "", nil)
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then a cycle runs and the state comes back", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(trigger.calls, ShouldEqual, 1)
			})
		})

		Convey("When /sync is fetched with GET", func() {
			resp, err := http.Get(ts.URL + "/sync")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the method is rejected without triggering", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusMethodNotAllowed)
				So(trigger.calls, ShouldEqual, 0)
			})
		})
	})

	Convey("Given a cycle already in flight", t, func() {
		trigger := &fakeTrigger{err: syncer.ErrSyncInProgress}
		ts := newTestServer(trigger)
		Reset(ts.Close)

		Convey("When /sync is posted", func() {
			resp, err := http.Post(ts.URL+"/sync", "", nil)
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the request is rejected with a conflict", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusConflict)
				var body errorResponse
				So(json.NewDecoder(resp.Body).Decode(&body), ShouldBeNil)
				So(body.Code, ShouldEqual, "sync_in_progress")
			})
		})
	})

	Convey("Given a cycle that fails", t, func() {
		trigger := &fakeTrigger{err: syncer.ErrCycleFailed}
		ts := newTestServer(trigger)
		Reset(ts.Close)

		Convey("When /sync is posted", func() {
			resp, err := http.Post(ts.URL+"/sync", "", nil)
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the failure surfaces as a gateway error", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadGateway)
			})
		})
	})
}
