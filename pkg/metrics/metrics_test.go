package metrics_test

import (
	"testing"

	"github.com/JericNisperos/pvparena/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManager(t *testing.T) {
	Convey("Given a manager on a private registry", t, func() {
		reg := prometheus.NewRegistry()
		m := metrics.NewManager(
			metrics.WithPrometheusRegistry(reg),
			metrics.WithNamespace("test"),
			metrics.WithSubsystem("elo"),
		)
		So(m, ShouldNotBeNil)

		Convey("Then all metric families are registered and gatherable", func() {
			families, err := reg.Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})
}

func TestPackageHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("Then the record helpers do not panic", func() {
			So(func() {
				metrics.RecordResultProcessed()
				metrics.RecordResultDuplicate()
				metrics.RecordResultSkipped("empty_match")
				metrics.RecordSettlementLatency(1.5)
				metrics.RecordRatingUpdate()
				metrics.RecordStoreError("upsert")
				metrics.RecordStoreQueryLatency(0.4)
				metrics.UpdateTotalPlayers(10)
				metrics.UpdateQueueSize(3)
				metrics.UpdateQueueCapacity(100)
				metrics.UpdateQueueUtilization(0.03)
				metrics.RecordQueueEnqueue()
				metrics.RecordQueueDequeue()
				metrics.RecordQueueDrop()
				metrics.UpdateWorkerCount(4)
				metrics.RecordWorkerError()
				metrics.RecordWorkerProcessingLatency(2.0)
				metrics.RecordHTTPRequest("leaderboard", "GET", "200")
				metrics.RecordHTTPRequestDuration("leaderboard", "GET", "200", 3.2)
			}, ShouldNotPanic)
		})

		Convey("And the shared registry gathers cleanly", func() {
			_, err := metrics.GetRegistry().Gather()
			So(err, ShouldBeNil)
		})
	})
}
