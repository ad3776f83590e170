package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"edusolver/model"
)

type chatRequest struct {
	History []model.ChatTurn `json:"history"`
	Message string           `json:"message"`
}

type chunkEvent struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type errorEvent struct {
	Text string `json:"text"`
}

func (r chatRequest) validate() error {
	for i, t := range r.History {
		if t.Role != model.RoleUser && t.Role != model.RoleModel {
			return fmt.Errorf("history[%d]: unknown role %q", i, t.Role)
		}
	}
	return nil
}

func setSSEHeaders(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
}

// handleChat streams one tutor reply. Every chunk event carries the reply text
// accumulated so far; the stream ends with done or error.
func (s *Server) handleChat(c *gin.Context) {
	var body chatRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := body.validate(); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if strings.TrimSpace(body.Message) == "" {
		RespondError(c, http.StatusBadRequest, "empty_input", model.ErrEmptyInput)
		return
	}
	if !s.ready() {
		s.respondUnavailable(c)
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	events := make(chan model.Event, 16)
	go func() {
		defer close(events)
		emit := func(ev model.Event) {
			select {
			case events <- ev:
			case <-ctx.Done():
			}
		}
		s.tutor.Send(ctx, uuid.NewString(), body.History, body.Message, emit)
	}()

	setSSEHeaders(c)
	c.Status(http.StatusOK)

	var last chunkEvent
	for ev := range events {
		switch ev := ev.(type) {
		case model.ChatChunk:
			last = chunkEvent{ID: ev.ReplyID, Text: ev.Text}
			c.SSEvent("chunk", last)
		case model.ChatCompleted:
			c.SSEvent("done", last)
		case model.ChatFailed:
			c.SSEvent("error", errorEvent{Text: ev.Fallback.Text})
		default:
			continue
		}
		c.Writer.Flush()
	}
}
