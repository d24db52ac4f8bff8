package ws

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shekharshaurya-coder/finalWork/domain/event"
	"github.com/shekharshaurya-coder/finalWork/errors"
)

func TestSink_Consume_Buffers_Until_Full(t *testing.T) {
	req := require.New(t)
	sink := NewSink(2, time.Second)
	ctx := context.Background()

	// Two events fit the buffer
	req.NoError(sink.Consume(ctx, event.UserOnline{UserID: "alice"}))
	req.NoError(sink.Consume(ctx, event.UserOnline{UserID: "bob"}))

	// The third is rejected instead of blocking the pipeline
	err := sink.Consume(ctx, event.UserOnline{UserID: "clara"})
	req.ErrorIs(err, errors.ErrDeliveryFailed)
}

func TestSink_Consume_After_Close_Fails_Fast(t *testing.T) {
	req := require.New(t)
	sink := NewSink(8, time.Second)

	sink.Close()

	err := sink.Consume(context.Background(), event.UserOnline{UserID: "alice"})
	req.ErrorIs(err, errors.ErrDeliveryFailed)
}

func TestSink_Close_Is_Idempotent(t *testing.T) {
	sink := NewSink(1, time.Second)
	sink.Close()
	sink.Close()
}

func TestSink_Consume_Honors_Context(t *testing.T) {
	req := require.New(t)
	sink := NewSink(0, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// An unbuffered sink with a dead context must not report success
	err := sink.Consume(ctx, event.UserOnline{UserID: "alice"})
	req.Error(err)
}
