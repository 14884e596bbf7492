package metrics

import (
	"errors"

	"github.com/kilianp07/a100/core/factory"
	coremetrics "github.com/kilianp07/a100/core/metrics"
)

// ErrInfluxURL is returned when an influx sink is configured without a URL.
var ErrInfluxURL = errors.New("influx sink: url required")

func init() {
	_ = coremetrics.RegisterMetricsSink("nop", func(map[string]any) (coremetrics.MetricsSink, error) {
		return coremetrics.NopSink{}, nil
	})
	_ = coremetrics.RegisterMetricsSink("prometheus", func(map[string]any) (coremetrics.MetricsSink, error) {
		return NewPromSink()
	})
	_ = coremetrics.RegisterMetricsSink("influx", newInfluxFromConf)
}

func newInfluxFromConf(conf map[string]any) (coremetrics.MetricsSink, error) {
	var c InfluxConfig
	if err := factory.Decode(conf, &c); err != nil {
		return nil, err
	}
	if c.URL == "" {
		return nil, ErrInfluxURL
	}
	return NewInfluxSinkWithFallback(c), nil
}
