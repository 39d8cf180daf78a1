package tui

import (
	"context"
	"errors"
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/lantern-chat/lantern/internal/backend"
	"github.com/lantern-chat/lantern/internal/citation"
	"github.com/lantern-chat/lantern/internal/toast"
)

// streamBufferSize is sized for ~1.5s burst at 60 FPS refresh rate.
// This prevents backpressure during UI render delays while keeping
// memory bounded.
const streamBufferSize = 100

// streamEvent is a discriminated union for all stream events.
// A single channel with a union type keeps the select logic simple and
// avoids multi-channel closure handling.
type streamEvent struct {
	// Exactly one of these fields is set per event
	text    string   // Text chunk (when non-empty)
	sources []string // Citation titles (when non-nil)
	err     error    // Error (when non-nil)
	done    bool     // True when stream completed successfully
}

// Stream message types for Bubble Tea.
type streamStartedMsg struct {
	eventCh <-chan streamEvent
	cancel  context.CancelFunc
}

type streamTextMsg struct {
	text string
}

type streamSourcesMsg struct {
	titles []string
}

type streamDoneMsg struct{}

type streamErrorMsg struct {
	err error
}

// toastsMsg carries a toast manager snapshot into the event loop.
type toastsMsg struct {
	toasts []toast.Toast
}

// startStream creates a command that initiates streaming.
//
// Goroutine lifecycle: the spawned goroutine exits when the backend stream
// completes, errors, or the context is canceled. Channel closure signals
// completion, no WaitGroup needed.
func (m *Model) startStream(query string) tea.Cmd {
	return func() tea.Msg {
		eventCh := make(chan streamEvent, streamBufferSize)

		// Bound a single turn so a dead backend cannot hang the UI
		ctx, cancel := context.WithTimeout(m.ctx, streamTimeout)

		go func() {
			defer cancel()
			defer close(eventCh)

			// Panic recovery to prevent TUI lockup
			defer func() {
				if r := recover(); r != nil {
					m.logger.Error("stream panic recovered", "panic", r)
					select {
					case eventCh <- streamEvent{err: fmt.Errorf("stream panic: %v", r)}:
					default:
					}
				}
			}()

			req := backend.ChatRequest{
				Messages: []backend.Message{{Role: "user", Content: query}},
			}

			err := m.backend.Chat(ctx, req, func(event backend.StreamEvent) error {
				switch event.Type {
				case backend.EventToken:
					if event.Token == "" {
						return nil
					}
					select {
					case eventCh <- streamEvent{text: event.Token}:
					case <-ctx.Done():
						return ctx.Err()
					}
				case backend.EventCitations:
					titles := make([]string, 0, len(event.Citations))
					for _, display := range citation.NormalizeAll(event.Citations) {
						titles = append(titles, display.Title)
					}
					select {
					case eventCh <- streamEvent{sources: titles}:
					case <-ctx.Done():
						return ctx.Err()
					}
				case backend.EventError:
					return errors.New(event.ErrMessage)
				}
				return nil
			})

			if err != nil {
				select {
				case eventCh <- streamEvent{err: err}:
				default:
				}
				return
			}

			select {
			case eventCh <- streamEvent{done: true}:
			default:
			}
		}()

		return streamStartedMsg{
			eventCh: eventCh,
			cancel:  cancel,
		}
	}
}

// listenForStream creates a command to wait for the next stream event.
// Empty events are skipped via loop instead of recursion to prevent stack
// growth under pathological conditions.
func listenForStream(eventCh <-chan streamEvent) tea.Cmd {
	return func() tea.Msg {
		if eventCh == nil {
			return nil
		}

		for {
			event, ok := <-eventCh
			if !ok {
				return streamErrorMsg{err: fmt.Errorf("stream ended without completion signal")}
			}

			switch {
			case event.err != nil:
				return streamErrorMsg{err: event.err}
			case event.done:
				return streamDoneMsg{}
			case event.sources != nil:
				return streamSourcesMsg{titles: event.sources}
			case event.text != "":
				return streamTextMsg{text: event.text}
			default:
				continue
			}
		}
	}
}

// listenForToasts creates a command to wait for the next toast snapshot.
func listenForToasts(toastCh <-chan []toast.Toast) tea.Cmd {
	return func() tea.Msg {
		toasts, ok := <-toastCh
		if !ok {
			return nil
		}
		return toastsMsg{toasts: toasts}
	}
}
