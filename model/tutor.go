package model

import (
	"context"
	"time"

	"github.com/google/uuid"

	"edusolver/config"
)

// Fixed tutor texts.
const (
	TutorInstruction = "You are a helpful and encouraging STEM tutor. Guide the student to the answer rather than just giving it. Use LaTeX for math."
	GreetingText     = "Hello! I'm your EduSolver assistant. Ask me anything about your STEM problems!"
)

// Tutor runs streaming chat turns against a provider.
type Tutor struct {
	Provider    Provider
	Model       string
	Instruction string
	// Timeout bounds the whole stream. Zero means no limit.
	Timeout time.Duration
}

// NewTutor creates a tutor with the fixed tutoring instruction.
func NewTutor(p Provider, model string) *Tutor {
	return &Tutor{Provider: p, Model: model, Instruction: TutorInstruction}
}

// Send streams one reply. Every fragment produces a ChatChunk holding the whole
// reply so far; the run ends with ChatCompleted or ChatFailed. It returns the
// final text, or the partial text and the error.
func (t *Tutor) Send(ctx context.Context, runID string, history []ChatTurn, text string, emit EmitFunc) (string, error) {
	replyID := uuid.NewString()
	acc := &Accumulator{}

	req := ChatRequest{
		Model:             t.Model,
		SystemInstruction: t.Instruction,
		History:           history,
		Message:           text,
	}

	streamCtx, cancel := withTimeout(ctx, t.Timeout)
	defer cancel()

	err := t.Provider.ChatStream(streamCtx, req, func(fragment string) error {
		full, err := acc.Add(fragment)
		if err != nil {
			return err
		}
		emit(ChatChunk{RunID: runID, ReplyID: replyID, Text: full, At: time.Now()})
		return streamCtx.Err()
	})
	if err != nil {
		partial := acc.Fail(err)
		config.DebugLog.Errorw("chat stream failed",
			"provider", t.Provider.Name(),
			"model", t.Model,
			"fragments", acc.Fragments(),
			"error", err)
		emit(ChatFailed{
			RunID:    runID,
			Partial:  partial,
			Err:      err,
			Fallback: syntheticMessage(ChatFailureText),
		})
		return partial, err
	}

	full := acc.Complete()
	emit(ChatCompleted{RunID: runID})
	return full, nil
}
