package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/a100/core/metrics"
	"github.com/kilianp07/a100/infra/logger"
)

// InfluxConfig locates the InfluxDB bucket receiving solve points.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes solve outcomes to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
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

// RecordSolve writes one schedule_solve point.
func (s *InfluxSink) RecordSolve(rec coremetrics.SolveRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("schedule_solve").
		AddTag("backend", rec.Backend).
		AddTag("status", rec.Status).
		AddField("run_id", rec.RunID).
		AddField("objective", rec.Objective).
		AddField("wall_time_ms", round3(rec.WallTime.Seconds()*1000)).
		AddField("branches", rec.Branches).
		AddField("zones", rec.Zones).
		AddField("scheduled", rec.Scheduled).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordUtilization writes one resource_utilization point per resource.
func (s *InfluxSink) RecordUtilization(loads []coremetrics.ResourceLoad) error {
	if len(loads) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	points := make([]*write.Point, len(loads))
	for i, l := range loads {
		points[i] = write.NewPointWithMeasurement("resource_utilization").
			AddTag("resource", l.Resource).
			AddField("run_id", l.RunID).
			AddField("peak", round3(l.Peak)).
			AddField("mean", round3(l.Mean)).
			AddField("ratio", round3(l.Ratio)).
			SetTime(l.Time)
	}
	return s.writeAPI.WritePoint(ctx, points...)
}

// Close releases the client resources.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
