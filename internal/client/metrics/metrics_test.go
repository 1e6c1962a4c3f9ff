package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/smartystreets/goconvey/convey"
)

func TestManager(t *testing.T) {
	convey.Convey("Given a metrics manager", t, func() {
		m := NewManager(WithNamespace("test"))

		convey.Convey("When API requests are observed", func() {
			m.ObserveRequest(http.MethodGet, "/api/contests/{id}", 200, 15*time.Millisecond)
			m.ObserveRequest(http.MethodGet, "/api/contests/{id}", 200, 25*time.Millisecond)
			m.ObserveRequest(http.MethodGet, "/api/contests/{id}", 0, time.Second)

			convey.Convey("Then they are counted per status", func() {
				convey.So(testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/contests/{id}", "200")), convey.ShouldEqual, 2)
				convey.So(testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/contests/{id}", "0")), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When refreshes complete", func() {
			m.RefreshCompleted(true)
			m.RefreshCompleted(false)
			m.RefreshCompleted(true)

			convey.Convey("Then results are split", func() {
				convey.So(testutil.ToFloat64(m.refreshes.WithLabelValues("success")), convey.ShouldEqual, 2)
				convey.So(testutil.ToFloat64(m.refreshes.WithLabelValues("failure")), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When the session state changes", func() {
			m.StateChanged("authenticated")

			convey.Convey("Then only that state is set", func() {
				convey.So(testutil.ToFloat64(m.sessionState.WithLabelValues("authenticated")), convey.ShouldEqual, 1)
				convey.So(testutil.ToFloat64(m.sessionState.WithLabelValues("unknown")), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When leaderboards load", func() {
			m.LeaderboardLoaded(false)
			m.LeaderboardLoaded(true)

			convey.Convey("Then sources are counted", func() {
				convey.So(testutil.ToFloat64(m.leaderboardLoads.WithLabelValues("live")), convey.ShouldEqual, 1)
				convey.So(testutil.ToFloat64(m.leaderboardLoads.WithLabelValues("cache")), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When the handler is scraped", func() {
			m.RefreshCompleted(true)
			rec := httptest.NewRecorder()
			m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
			body, _ := io.ReadAll(rec.Body)

			convey.Convey("Then the metrics are exposed", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(string(body), convey.ShouldContainSubstring, "test_session_refreshes_total")
				convey.So(string(body), convey.ShouldContainSubstring, "test_session_state")
			})
		})
	})
}
