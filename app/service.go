package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/kilianp07/a100/api/schedule"
	"github.com/kilianp07/a100/config"
	"github.com/kilianp07/a100/core/events"
	coremetrics "github.com/kilianp07/a100/core/metrics"
	coremqtt "github.com/kilianp07/a100/core/mqtt"
	"github.com/kilianp07/a100/core/scheduler"
	"github.com/kilianp07/a100/core/solvelog"
	"github.com/kilianp07/a100/infra/logger"
	"github.com/kilianp07/a100/infra/metrics"
	"github.com/kilianp07/a100/infra/mqtt"
	"github.com/kilianp07/a100/internal/eventbus"
)

// Service wires the scheduler to its solve log, metrics sinks, MQTT
// publisher and HTTP API.
type Service struct {
	Scheduler *scheduler.Scheduler

	cfg       *config.Config
	bus       *eventbus.Bus[events.SolveEvent]
	store     solvelog.LogStore
	sink      coremetrics.MetricsSink
	publisher coremqtt.Publisher
	closePub  func()
	log       logger.Logger

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    []<-chan struct{}
}

// Option customizes a Service.
type Option func(*Service)

// WithSink replaces the sinks described by the metrics configuration.
func WithSink(s coremetrics.MetricsSink) Option {
	return func(svc *Service) { svc.sink = s }
}

// WithPublisher replaces the MQTT publisher described by the configuration.
func WithPublisher(p coremqtt.Publisher) Option {
	return func(svc *Service) { svc.publisher = p }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(svc *Service) { svc.log = l }
}

// New creates a Service from the configuration.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	svc := &Service{cfg: cfg, log: logger.New("service")}
	for _, o := range opts {
		o(svc)
	}

	if svc.sink == nil {
		sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
		if err != nil {
			return nil, fmt.Errorf("metrics sink: %w", err)
		}
		svc.sink = sink
	}
	if svc.publisher == nil && cfg.MQTT.Enabled() {
		pub, err := mqtt.NewPahoPublisher(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		svc.publisher = pub
		svc.closePub = pub.Disconnect
	}

	store, err := solvelog.Open(cfg.Logging)
	if err != nil {
		svc.closePublisher()
		return nil, fmt.Errorf("solve log: %w", err)
	}
	svc.store = store
	svc.bus = eventbus.New[events.SolveEvent](eventbus.DefaultBuffer)

	sched, err := scheduler.NewFromConfig(cfg.Scheduler,
		scheduler.WithLogger(logger.New("scheduler")),
		scheduler.WithBus(svc.bus),
		scheduler.WithStore(store),
	)
	if err != nil {
		_ = store.Close()
		svc.closePublisher()
		return nil, err
	}
	svc.Scheduler = sched
	return svc, nil
}

// Store returns the solve log.
func (s *Service) Store() solvelog.LogStore { return s.store }

// Start launches the metrics collector and the schedule forwarder. Events
// published before Start are not recorded.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = append(s.done, metrics.StartEventCollector(ctx, s.bus, s.sink, s.log))
	if s.publisher != nil {
		s.done = append(s.done, mqtt.StartScheduleForwarder(ctx, s.bus, s.publisher, s.log))
	}
}

// Handler returns the HTTP API. /metrics is mounted on it when a
// Prometheus sink is configured without a dedicated address.
func (s *Service) Handler() http.Handler {
	r := schedule.NewRouter(s.Scheduler, s.store, s.cfg.HTTP.Token, s.log)
	if s.servesPromInline() {
		r.Handle("/metrics", metrics.Handler(nil))
	}
	return r
}

func (s *Service) servesPromInline() bool {
	if s.cfg.Metrics.PrometheusAddr != "" {
		return false
	}
	for _, m := range s.cfg.Metrics.Sinks {
		if m.Type == "prometheus" {
			return true
		}
	}
	return false
}

// Run starts the service and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	s.Start(ctx)
	errCh := make(chan error, 2)
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, addr, nil, s.log); err != nil {
				s.log.Errorf("prom server: %v", err)
				errCh <- err
			}
		}()
	}
	go func() {
		s.log.Infof("listening on %s with backend %s", s.cfg.HTTP.Addr, s.Scheduler.Backend())
		errCh <- schedule.Serve(ctx, s.cfg.HTTP, s.Handler())
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return <-errCh
	}
}

// Close stops the background consumers once they have drained the bus and
// releases the store and the MQTT connection.
func (s *Service) Close() error {
	s.bus.Close()
	s.mu.Lock()
	done := s.done
	cancel := s.cancel
	s.mu.Unlock()
	for _, d := range done {
		<-d
	}
	if cancel != nil {
		cancel()
	}
	s.closePublisher()
	var errs []error
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	if err := s.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("solve log: %w", err))
	}
	return errors.Join(errs...)
}

func (s *Service) closePublisher() {
	if s.closePub != nil {
		s.closePub()
		s.closePub = nil
	}
}
