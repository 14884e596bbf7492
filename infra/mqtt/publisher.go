package mqtt

import (
	"context"
	"fmt"
	"sync"

	coremqtt "github.com/kilianp07/a100/core/mqtt"
)

// Publisher mirrors the core mqtt.Publisher interface.
type Publisher = coremqtt.Publisher

// MockPublisher is a simple publisher used in tests.
type MockPublisher struct {
	Messages []coremqtt.ScheduleMessage
	FailRuns map[string]bool
	mu       sync.Mutex
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{FailRuns: make(map[string]bool)}
}

// PublishSchedule records the message or returns an error if configured to fail.
func (m *MockPublisher) PublishSchedule(_ context.Context, msg coremqtt.ScheduleMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailRuns[msg.RunID] {
		return fmt.Errorf("publish failed")
	}
	m.Messages = append(m.Messages, msg)
	return nil
}

// Sent returns a copy of the recorded messages.
func (m *MockPublisher) Sent() []coremqtt.ScheduleMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]coremqtt.ScheduleMessage(nil), m.Messages...)
}
