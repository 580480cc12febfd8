package assistant

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// EventSink receives named server-sent events. Send returns an error when
// the client is gone and nothing more can be written.
type EventSink interface {
	Send(event string, data interface{}) error
}

// Relay drives one streaming chat turn over an EventSink. Incremental text
// goes out as "message" events, then exactly one terminal event follows:
// "done" with the full result or "error" with the failure text. A bounded
// worker pool caps concurrent streams and each stream has a hard timeout.
type Relay struct {
	slots   chan struct{}
	timeout time.Duration
	log     zerolog.Logger
}

func NewRelay(poolSize int, timeout time.Duration, log zerolog.Logger) *Relay {
	if poolSize < 1 {
		poolSize = 1
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Relay{
		slots:   make(chan struct{}, poolSize),
		timeout: timeout,
		log:     log,
	}
}

// Run blocks until the turn finishes. fn receives an onChunk callback that
// is safe to call from the provider's read loop; a failed chunk write
// cancels the turn and suppresses further chunks.
func (r *Relay) Run(ctx context.Context, sink EventSink, fn func(ctx context.Context, onChunk func(string)) (interface{}, error)) error {
	select {
	case r.slots <- struct{}{}:
		defer func() { <-r.slots }()
	case <-ctx.Done():
		return ctx.Err()
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var terminal sync.Once
	var broken atomic.Bool

	finish := func(event string, data interface{}) {
		terminal.Do(func() {
			if broken.Load() {
				return
			}
			if err := sink.Send(event, data); err != nil {
				r.log.Error().Err(err).Str("event", event).Msg("failed to send terminal SSE event")
			}
		})
	}

	onChunk := func(chunk string) {
		if broken.Load() {
			return
		}
		if err := sink.Send("message", map[string]string{"content": chunk}); err != nil {
			if broken.CompareAndSwap(false, true) {
				r.log.Error().Err(err).Msg("failed to send SSE chunk, aborting stream")
				cancel()
			}
		}
	}

	result, err := fn(ctx, onChunk)
	if err != nil {
		finish("error", map[string]string{"error": err.Error()})
		return err
	}
	finish("done", result)
	return nil
}
