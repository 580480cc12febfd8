package assistant

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedEvent struct {
	Name string
	Data interface{}
}

type recordingSink struct {
	mu     sync.Mutex
	events []recordedEvent
	failAt int // fail the Nth Send (1-based), 0 means never
	sends  int
}

func (s *recordingSink) Send(event string, data interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sends++
	if s.failAt > 0 && s.sends >= s.failAt {
		return errors.New("client went away")
	}
	s.events = append(s.events, recordedEvent{Name: event, Data: data})
	return nil
}

func (s *recordingSink) recorded() []recordedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]recordedEvent(nil), s.events...)
}

func TestRelayStreamsChunksThenDone(t *testing.T) {
	relay := NewRelay(2, time.Minute, zerolog.Nop())
	sink := &recordingSink{}

	err := relay.Run(context.Background(), sink, func(ctx context.Context, onChunk func(string)) (interface{}, error) {
		for _, c := range []string{"Hel", "lo, ", "world"} {
			onChunk(c)
		}
		return map[string]string{"content": "Hello, world"}, nil
	})
	require.NoError(t, err)

	events := sink.recorded()
	require.Len(t, events, 4)
	for i, chunk := range []string{"Hel", "lo, ", "world"} {
		assert.Equal(t, "message", events[i].Name)
		assert.Equal(t, map[string]string{"content": chunk}, events[i].Data)
	}
	assert.Equal(t, "done", events[3].Name)
}

func TestRelayErrorIsSingleTerminalEvent(t *testing.T) {
	relay := NewRelay(1, time.Minute, zerolog.Nop())
	sink := &recordingSink{}

	err := relay.Run(context.Background(), sink, func(ctx context.Context, onChunk func(string)) (interface{}, error) {
		onChunk("partial")
		return nil, errors.New("provider exploded")
	})
	require.Error(t, err)

	events := sink.recorded()
	require.Len(t, events, 2)
	assert.Equal(t, "message", events[0].Name)
	assert.Equal(t, "error", events[1].Name)
	assert.Equal(t, map[string]string{"error": "provider exploded"}, events[1].Data)
}

func TestRelayBrokenSinkCancelsAndSuppresses(t *testing.T) {
	relay := NewRelay(1, time.Minute, zerolog.Nop())
	sink := &recordingSink{failAt: 2}

	var sawCancel bool
	err := relay.Run(context.Background(), sink, func(ctx context.Context, onChunk func(string)) (interface{}, error) {
		onChunk("one")
		onChunk("two")   // write fails, stream marked broken
		onChunk("three") // suppressed
		select {
		case <-ctx.Done():
			sawCancel = true
		case <-time.After(time.Second):
		}
		return nil, ctx.Err()
	})
	require.Error(t, err)

	assert.True(t, sawCancel)
	events := sink.recorded()
	// Only the first chunk landed; no terminal event goes to a broken sink.
	require.Len(t, events, 1)
	assert.Equal(t, "message", events[0].Name)
	assert.Equal(t, 2, sink.sends)
}

func TestRelayTimeout(t *testing.T) {
	relay := NewRelay(1, 20*time.Millisecond, zerolog.Nop())
	sink := &recordingSink{}

	err := relay.Run(context.Background(), sink, func(ctx context.Context, onChunk func(string)) (interface{}, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	events := sink.recorded()
	require.Len(t, events, 1)
	assert.Equal(t, "error", events[0].Name)
}

func TestRelayBoundsConcurrency(t *testing.T) {
	relay := NewRelay(2, time.Minute, zerolog.Nop())

	var mu sync.Mutex
	running, peak := 0, 0

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = relay.Run(context.Background(), &recordingSink{}, func(ctx context.Context, onChunk func(string)) (interface{}, error) {
				mu.Lock()
				running++
				if running > peak {
					peak = running
				}
				mu.Unlock()

				time.Sleep(20 * time.Millisecond)

				mu.Lock()
				running--
				mu.Unlock()
				return "ok", nil
			})
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak, 2)
	assert.Greater(t, peak, 0)
}
