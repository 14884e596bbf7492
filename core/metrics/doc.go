// Package metrics defines the sinks that record solve outcomes for
// observability. Sinks like PromSink and InfluxSink live in infra/metrics and
// register themselves under a type name; NewMetricsSink instantiates them
// from configuration and returns a MultiSink when several are configured.
package metrics
