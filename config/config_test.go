package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, "config.yaml", `scheduler:
  backend:
    type: "search"
    conf:
      workers: 2
  time_limit_seconds: 5
  max_branches: 100000
  max_slots: 2880
metrics:
  sinks:
    - type: "nop"
  prometheus_addr: ":9100"
logging:
  backend: "sqlite"
  path: "solves.db"
mqtt:
  broker: "tcp://localhost:1883"
  client_id: "cli"
  username: "user"
  password: "pass"
  topic_prefix: "farm/schedules"
  qos: 1
http:
  addr: ":9000"
  token: "secret"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"backend", cfg.Scheduler.Backend.Type, "search"},
		{"time_limit_seconds", cfg.Scheduler.TimeLimitSeconds, 5.0},
		{"max_branches", cfg.Scheduler.MaxBranches, int64(100000)},
		{"num_workers default", cfg.Scheduler.NumWorkers, runtime.GOMAXPROCS(0)},
		{"max_slots", cfg.Scheduler.MaxSlots, 2880},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"prometheus_addr", cfg.Metrics.PrometheusAddr, ":9100"},
		{"logging.backend", cfg.Logging.Backend, "sqlite"},
		{"logging.path", cfg.Logging.Path, "solves.db"},
		{"broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"client_id", cfg.MQTT.ClientID, "cli"},
		{"topic_prefix", cfg.MQTT.TopicPrefix, "farm/schedules"},
		{"qos", cfg.MQTT.QoS, byte(1)},
		{"mqtt retries default", cfg.MQTT.MaxRetries, 3},
		{"http.addr", cfg.HTTP.Addr, ":9000"},
		{"http.token", cfg.HTTP.Token, "secret"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
	assert.EqualValues(t, 2, cfg.Scheduler.Backend.Conf["workers"])
}

func TestLoad_JSONDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.json", `{"mqtt": {}}`))
	require.NoError(t, err)
	assert.Equal(t, "search", cfg.Scheduler.Backend.Type)
	assert.Equal(t, 60.0, cfg.Scheduler.TimeLimitSeconds)
	assert.Equal(t, "jsonl", cfg.Logging.Backend)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.False(t, cfg.MQTT.Enabled())
	assert.Empty(t, cfg.MQTT.TopicPrefix)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("A100_SCHEDULER__MAX_BRANCHES", "42")
	t.Setenv("A100_HTTP__TOKEN", "from-env")
	cfg, err := Load(writeConfig(t, "config.yaml", "http:\n  token: file\n"))
	require.NoError(t, err)
	assert.Equal(t, int64(42), cfg.Scheduler.MaxBranches)
	assert.Equal(t, "from-env", cfg.HTTP.Token)
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]string{
		"format":  writeConfig(t, "config.toml", ""),
		"logging": writeConfig(t, "bad.yaml", "logging:\n  backend: csv\n"),
		"limit":   writeConfig(t, "limit.yaml", "scheduler:\n  time_limit_seconds: -1\n"),
		"mqtt":    writeConfig(t, "mqtt.yaml", "mqtt:\n  broker: tcp://b:1883\n  qos: 5\n"),
		"missing": filepath.Join(t.TempDir(), "none.yaml"),
	}
	for name, path := range cases {
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "solves.log", cfg.Logging.Path)
}
