package main

import (
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
)

func TestSendAttempts(t *testing.T) {
	tests := []struct {
		name    string
		headers amqp.Table
		want    int
	}{
		{name: "nil headers", headers: nil, want: 0},
		{name: "missing key", headers: amqp.Table{}, want: 0},
		{name: "int32", headers: amqp.Table{"x-attempts": int32(2)}, want: 2},
		{name: "int64", headers: amqp.Table{"x-attempts": int64(1)}, want: 1},
		{name: "int", headers: amqp.Table{"x-attempts": 3}, want: 3},
		{name: "unexpected type", headers: amqp.Table{"x-attempts": "2"}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sendAttempts(tt.headers))
		})
	}
}

func TestRetryCapReachedAfterRepublishes(t *testing.T) {
	// Fresh message fails twice through the republish path, then the third
	// failure hits the cap and the message is dropped.
	headers := amqp.Table(nil)
	for round := 1; ; round++ {
		attempts := sendAttempts(headers) + 1
		if attempts >= maxSendAttempts {
			assert.Equal(t, 3, round)
			return
		}
		headers = amqp.Table{"x-attempts": int32(attempts)}
	}
}
