package services

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/desertthunder/dumper/internal/shared"
)

const maxEventLine = 2 * 1024 * 1024

// Message is one dispatched event.
type Message struct {
	Event string
	ID    string
	Data  string
}

// Stream is an open event stream.
type Stream struct {
	body     io.ReadCloser
	cancel   context.CancelFunc
	messages chan Message
	done     chan struct{}
	once     sync.Once
	err      error
}

func newStream(body io.ReadCloser, cancel context.CancelFunc) *Stream {
	s := &Stream{
		body:     body,
		cancel:   cancel,
		messages: make(chan Message, 16),
		done:     make(chan struct{}),
	}
	go s.read()
	return s
}

// Messages delivers events until the stream ends; check [Stream.Err] afterwards.
func (s *Stream) Messages() <-chan Message {
	return s.messages
}

// Next blocks for the next event. Once the stream has ended it returns the terminal error.
func (s *Stream) Next() (Message, error) {
	m, ok := <-s.messages
	if !ok {
		return Message{}, s.Err()
	}
	return m, nil
}

// Err reports why the stream ended. It is only meaningful after Messages is closed.
func (s *Stream) Err() error {
	return s.err
}

// Close stops the stream and releases the connection. It is safe to call more than once.
func (s *Stream) Close() error {
	s.once.Do(func() {
		close(s.done)
		s.cancel()
	})
	return nil
}

func (s *Stream) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *Stream) read() {
	defer close(s.messages)
	defer s.body.Close()

	scanner := bufio.NewScanner(s.body)
	scanner.Buffer(make([]byte, 64*1024), maxEventLine)

	var pending Message
	var data []string

	dispatch := func() bool {
		defer func() { pending, data = Message{}, nil }()
		if len(data) == 0 {
			return true
		}
		if pending.Event == "" {
			pending.Event = "message"
		}
		if pending.Event != "message" {
			return true
		}
		pending.Data = strings.Join(data, "\n")
		select {
		case s.messages <- pending:
			return true
		case <-s.done:
			return false
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			if !dispatch() {
				break
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "data":
			data = append(data, value)
		case "event":
			pending.Event = value
		case "id":
			pending.ID = value
		}
	}

	s.err = s.endErr(scanner.Err())
}

func (s *Stream) endErr(err error) error {
	switch {
	case s.closed():
		return shared.ErrStreamClosed
	case err != nil:
		return fmt.Errorf("%w: %w", shared.ErrStreamFailed, err)
	default:
		return fmt.Errorf("%w: connection closed by server", shared.ErrStreamFailed)
	}
}
