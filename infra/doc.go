// Package infra holds the adapters that move solve outcomes out of the
// process: Prometheus and InfluxDB sinks, the MQTT schedule publisher and the
// zerolog logger. They implement interfaces declared under core.
package infra
