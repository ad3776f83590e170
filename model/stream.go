package model

import (
	"strings"
	"sync"
)

// StreamState is the lifecycle of an Accumulator.
type StreamState int

const (
	StreamAccumulating StreamState = iota
	StreamCompleted
	StreamFailed
)

func (s StreamState) String() string {
	switch s {
	case StreamAccumulating:
		return "accumulating"
	case StreamCompleted:
		return "completed"
	case StreamFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Accumulator folds streamed fragments into one reply. On failure the partial
// text stays available next to the error so the caller can decide what to show.
type Accumulator struct {
	mu    sync.Mutex
	buf   strings.Builder
	count int
	state StreamState
	err   error
}

// Add appends fragment and returns the full text so far.
func (a *Accumulator) Add(fragment string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != StreamAccumulating {
		return a.buf.String(), ErrStreamClosed
	}
	a.buf.WriteString(fragment)
	a.count++
	return a.buf.String(), nil
}

// Complete marks the stream finished and returns the final text.
func (a *Accumulator) Complete() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == StreamAccumulating {
		a.state = StreamCompleted
	}
	return a.buf.String()
}

// Fail marks the stream failed and returns the text received before err.
func (a *Accumulator) Fail(err error) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == StreamAccumulating {
		a.state = StreamFailed
		a.err = err
	}
	return a.buf.String()
}

// Text returns the accumulated text.
func (a *Accumulator) Text() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.buf.String()
}

// State returns the current lifecycle state.
func (a *Accumulator) State() StreamState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Err returns the failure cause, if any.
func (a *Accumulator) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// Fragments returns how many fragments were added, empty ones included.
func (a *Accumulator) Fragments() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.count
}
