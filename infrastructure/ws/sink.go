package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/shekharshaurya-coder/finalWork/domain/event"
	"github.com/shekharshaurya-coder/finalWork/errors"
)

// frame is the outbound wire envelope.
type frame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Sink is the live-connection handle stored in the registry: a buffered
// channel drained by a single write pump. Consume never blocks the pipeline;
// a full buffer or a closed connection reports a delivery failure and the
// event is lost for this connection.
type Sink struct {
	events       chan event.Event
	done         chan struct{}
	closeOnce    sync.Once
	writeTimeout time.Duration
}

func NewSink(bufferSize int, writeTimeout time.Duration) *Sink {
	return &Sink{
		events:       make(chan event.Event, bufferSize),
		done:         make(chan struct{}),
		writeTimeout: writeTimeout,
	}
}

// Consume enqueues an event for the write pump.
func (s *Sink) Consume(ctx context.Context, e event.Event) error {
	select {
	case <-s.done:
		return errors.ErrDeliveryFailed
	default:
	}

	select {
	case s.events <- e:
		return nil
	case <-s.done:
		return errors.ErrDeliveryFailed
	case <-ctx.Done():
		return ctx.Err()
	default:
		// Backpressure: the client is not keeping up.
		return errors.ErrDeliveryFailed
	}
}

// Run drains the buffer onto the connection until the sink is closed or a
// write fails. Exactly one pump goroutine per connection keeps writes
// serialized, which gorilla/websocket requires.
func (s *Sink) Run(conn *websocket.Conn) {
	for {
		select {
		case <-s.done:
			return
		case e := <-s.events:
			payload, err := json.Marshal(frame{Event: e.Name(), Data: e})
			if err != nil {
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				s.Close()
				return
			}
		}
	}
}

// Close makes every subsequent Consume fail fast and stops the pump.
func (s *Sink) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}
