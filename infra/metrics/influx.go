package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/freightsim/core/metrics"
	"github.com/kilianp07/freightsim/core/model"
	"github.com/kilianp07/freightsim/infra/logger"
)

// InfluxSink writes simulation outcomes to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
	now      func() time.Time
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
		now:      time.Now,
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

func (s *InfluxSink) write(p *write.Point) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordRun writes the run summary as one point.
func (s *InfluxSink) RecordRun(sum model.RunSummary) error {
	p := write.NewPointWithMeasurement("simulation_run").
		AddTag("run_id", sum.RunID).
		AddTag("strategy", sum.Strategy).
		AddField("freights", sum.Freights).
		AddField("assigned", sum.Assigned).
		AddField("unassigned", sum.Unassigned).
		AddField("success_rate", round3(sum.SuccessRate())).
		AddField("distance_km", round3(sum.TotalDistanceKm)).
		AddField("busy_s", round3(sum.TotalBusySeconds)).
		AddField("mean_utilization", round3(sum.MeanUtilization)).
		AddField("events", sum.Events).
		AddField("wall_ms", sum.WallTime.Milliseconds()).
		SetTime(s.now())
	return s.write(p)
}

// RecordAssignment writes one dispatch decision.
func (s *InfluxSink) RecordAssignment(a coremetrics.AssignmentSample) error {
	p := write.NewPointWithMeasurement("assignment").
		AddTag("run_id", a.RunID).
		AddTag("strategy", a.Strategy).
		AddTag("freight_id", a.FreightID).
		AddTag("success", strconv.FormatBool(a.Success))
	if a.VehicleID != "" {
		p = p.AddTag("vehicle_id", a.VehicleID)
	}
	p = p.AddField("distance_km", round3(a.DistanceKm)).SetTime(a.Time)
	return s.write(p)
}

// RecordLocalSearch writes a local search summary.
func (s *InfluxSink) RecordLocalSearch(ev coremetrics.LocalSearchEvent) error {
	p := write.NewPointWithMeasurement("local_search").
		AddTag("run_id", ev.RunID).
		AddTag("strategy", ev.Strategy).
		AddField("initial_km", round3(ev.InitialObjective)).
		AddField("objective_km", round3(ev.Objective)).
		AddField("iterations", ev.Iterations).
		AddField("improvement_pct", round3(ev.ImprovementPct)).
		AddField("elapsed_ms", ev.Elapsed.Milliseconds()).
		SetTime(ev.Time)
	return s.write(p)
}

// RecordSolver writes a solver summary. Infinite values are omitted.
func (s *InfluxSink) RecordSolver(ev coremetrics.SolverEvent) error {
	p := write.NewPointWithMeasurement("solver_run").
		AddTag("run_id", ev.RunID).
		AddTag("status", ev.Status).
		AddField("elapsed_ms", ev.Elapsed.Milliseconds())
	if finite(ev.Objective) {
		p = p.AddField("objective_km", round3(ev.Objective))
	}
	if finite(ev.Bound) {
		p = p.AddField("bound_km", round3(ev.Bound))
	}
	if finite(ev.Gap) {
		p = p.AddField("gap", round3(ev.Gap))
	}
	return s.write(p.SetTime(ev.Time))
}

// Flush closes the client.
func (s *InfluxSink) Flush() error {
	s.client.Close()
	return nil
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}

func finite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}
