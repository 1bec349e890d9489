package appkafka

import (
	"errors"
	"sync"

	"github.com/segmentio/kafka-go"
)

// MockKafka records written messages in memory.
type MockKafka struct {
	mu              sync.Mutex
	WrittenMessages []kafka.Message // stores messages written via WriteMessages
	FailWrites      int             // number of leading WriteMessages calls that fail
	Closed          bool
}

// WriteMessages appends messages, or fails while FailWrites is positive.
func (m *MockKafka) WriteMessages(messages ...kafka.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWrites > 0 {
		m.FailWrites--
		return errors.New("mock kafka write failed")
	}
	m.WrittenMessages = append(m.WrittenMessages, messages...)
	return nil
}

// Messages returns a copy of what has been written so far.
func (m *MockKafka) Messages() []kafka.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]kafka.Message(nil), m.WrittenMessages...)
}

func (m *MockKafka) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

// MockKafkaFail always fails.
type MockKafkaFail struct{}

func (m *MockKafkaFail) WriteMessages(messages ...kafka.Message) error {
	return errors.New("mock kafka write failed")
}

func (m *MockKafkaFail) Close() error { return nil }
