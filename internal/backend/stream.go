package backend

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// EventType discriminates chat stream events.
type EventType string

// Chat stream event types emitted by the backend.
const (
	EventToken     EventType = "token"
	EventCitations EventType = "citations"
	EventDone      EventType = "done"
	EventError     EventType = "error"
)

// StreamEvent is a single SSE event from the chat endpoint.
type StreamEvent struct {
	Type EventType

	// Token carries the next response fragment for EventToken.
	Token string `json:"token,omitempty"`

	// MessageID identifies the assistant message, set on EventDone.
	MessageID string `json:"message_id,omitempty"`

	// Citations carries retrieval sources for EventCitations.
	Citations []Citation `json:"citations,omitempty"`

	// ErrMessage carries the backend's failure description for EventError.
	ErrMessage string `json:"error,omitempty"`
}

// ChatRequest is the payload for a streaming chat call.
type ChatRequest struct {
	SessionID string    `json:"session_id,omitempty"`
	Messages  []Message `json:"messages"`
}

// StreamFunc receives chat stream events in arrival order. Returning an
// error aborts the stream.
type StreamFunc func(StreamEvent) error

// Chat sends the conversation to the backend and streams the response
// through fn until the backend reports done, the stream ends, fn returns an
// error, or ctx is cancelled.
func (c *Client) Chat(ctx context.Context, chatReq ChatRequest, fn StreamFunc) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for rate limiter: %w", err)
	}

	payload, err := json.Marshal(chatReq)
	if err != nil {
		return fmt.Errorf("encoding chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.stream.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		return fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
	}

	return readStream(ctx, resp.Body, fn)
}

// readStream parses SSE frames (event/data lines separated by a blank line)
// and dispatches each completed frame to fn.
func readStream(ctx context.Context, r io.Reader, fn StreamFunc) error {
	scanner := bufio.NewScanner(r)
	// Token frames are small, citation frames are not. 1 MiB covers any
	// sane citation batch.
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)

	var eventName string
	var data strings.Builder

	flush := func() error {
		if eventName == "" && data.Len() == 0 {
			return nil
		}
		event, err := parseEvent(eventName, data.String())
		eventName = ""
		data.Reset()
		if err != nil {
			return err
		}
		return fn(event)
	}

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return fmt.Errorf("chat stream cancelled: %w", ctx.Err())
		default:
		}

		line := scanner.Text()
		switch {
		case line == "":
			if err := flush(); err != nil {
				return err
			}
		case strings.HasPrefix(line, "event:"):
			eventName = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		case strings.HasPrefix(line, ":"):
			// comment/keepalive
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: reading stream: %v", ErrUnavailable, err)
	}

	// Trailing frame without a final blank line.
	return flush()
}

// parseEvent decodes one SSE frame into a StreamEvent.
func parseEvent(name, data string) (StreamEvent, error) {
	event := StreamEvent{Type: EventType(name)}
	switch event.Type {
	case EventToken, EventCitations, EventDone, EventError:
	default:
		return StreamEvent{}, fmt.Errorf("%w: unknown event %q", ErrInvalidResponse, name)
	}

	if data != "" {
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			return StreamEvent{}, fmt.Errorf("%w: decoding %s event: %v", ErrInvalidResponse, name, err)
		}
	}
	return event, nil
}
