package appkafka

import (
	"testing"

	"github.com/segmentio/kafka-go"
)

func TestMockKafka_FailWritesThenRecords(t *testing.T) {
	m := &MockKafka{FailWrites: 1}

	if err := m.WriteMessages(kafka.Message{Value: []byte("a")}); err == nil {
		t.Fatalf("expected first write to fail")
	}
	if err := m.WriteMessages(kafka.Message{Value: []byte("b")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msgs := m.Messages()
	if len(msgs) != 1 || string(msgs[0].Value) != "b" {
		t.Fatalf("unexpected messages: %+v", msgs)
	}
	if err := m.Close(); err != nil || !m.Closed {
		t.Fatalf("expected mock to be closed")
	}
}

func TestLogWriter_AcceptsEverything(t *testing.T) {
	var w KafkaWriter = LogWriter{}
	if err := w.WriteMessages(kafka.Message{Key: []byte("post_created"), Value: []byte("{}")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}
}

func TestRealKafkaWriter_NilConn(t *testing.T) {
	w := &RealKafkaWriter{}
	if err := w.WriteMessages(kafka.Message{}); err == nil {
		t.Fatalf("expected error for nil connection")
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close on nil connection should be a no-op, got %v", err)
	}
}
