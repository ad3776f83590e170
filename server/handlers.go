package server

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"edusolver/config"
	"edusolver/model"
	"edusolver/storage"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

type solveRequest struct {
	Prompt      string `json:"prompt"`
	ImageBase64 string `json:"image_base64"`
	MIMEType    string `json:"mime_type"`
	Mode        string `json:"mode"`
}

type historyItem struct {
	ID          string    `json:"id"`
	Prompt      string    `json:"prompt"`
	Mode        string    `json:"mode"`
	Topic       string    `json:"topic"`
	Difficulty  string    `json:"difficulty"`
	FinalAnswer string    `json:"final_answer"`
	Consistent  bool      `json:"consistent"`
	HadImage    bool      `json:"had_image"`
	Provider    string    `json:"provider"`
	Model       string    `json:"model"`
	CreatedAt   time.Time `json:"created_at"`
}

type historyDetail struct {
	historyItem
	Solution *model.Solution `json:"solution"`
}

type topicItem struct {
	Topic          string  `json:"topic"`
	ProblemsSolved int     `json:"problems_solved"`
	Consistent     int     `json:"consistent"`
	Score          float64 `json:"score"`
}

func toHistoryItem(r storage.Record) historyItem {
	return historyItem{
		ID:          r.ID,
		Prompt:      r.Prompt,
		Mode:        r.Mode,
		Topic:       r.Topic,
		Difficulty:  r.Difficulty,
		FinalAnswer: r.FinalAnswer,
		Consistent:  r.Consistent,
		HadImage:    r.HadImage,
		Provider:    r.Provider,
		Model:       r.ModelName,
		CreatedAt:   r.CreatedAt,
	}
}

// input converts the request body into a SolveInput. An empty mode means the
// configured default.
func (r solveRequest) input(fallback model.Mode) (model.SolveInput, string, error) {
	in := model.SolveInput{Prompt: r.Prompt, Mode: fallback}
	if strings.TrimSpace(r.Mode) != "" {
		mode, err := model.ParseMode(r.Mode)
		if err != nil {
			return in, "invalid_mode", err
		}
		in.Mode = mode
	}

	if r.ImageBase64 == "" {
		return in, "", nil
	}
	data, err := base64.StdEncoding.DecodeString(r.ImageBase64)
	if err != nil {
		return in, "invalid_image", fmt.Errorf("image_base64 is not valid base64: %w", err)
	}
	mime := r.MIMEType
	if mime == "" {
		mime = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mime, "image/") {
		return in, "invalid_image", fmt.Errorf("unsupported image type %s", mime)
	}
	in.Image = &model.ImageData{Data: data, MIMEType: mime}
	return in, "", nil
}

func (s *Server) respondUnavailable(c *gin.Context) {
	err := s.credErr
	if err == nil {
		err = errors.New("provider not configured")
	}
	RespondError(c, http.StatusServiceUnavailable, "credential_missing", err)
}

func (s *Server) handleSolve(c *gin.Context) {
	var body solveRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	in, code, err := body.input(s.mode)
	if err != nil {
		RespondError(c, http.StatusBadRequest, code, err)
		return
	}
	if in.IsEmpty() {
		RespondError(c, http.StatusBadRequest, "empty_input", model.ErrEmptyInput)
		return
	}
	if !s.ready() {
		s.respondUnavailable(c)
		return
	}

	req, err := model.BuildRequest(in, s.models)
	if err != nil {
		RespondError(c, http.StatusBadRequest, model.FailureKind(err), err)
		return
	}

	ctx := c.Request.Context()
	runID := uuid.NewString()
	sol, err := s.pipeline.Run(ctx, runID, req, func(model.Event) {})
	if err != nil {
		if ctx.Err() != nil {
			// Client went away.
			return
		}
		config.DebugLog.Errorw("api solve failed",
			"run", runID,
			"kind", model.FailureKind(err),
			"error", err)
		RespondError(c, http.StatusBadGateway, model.FailureKind(err), errors.New(model.SolveFailureText))
		return
	}

	s.record(req, sol)
	RespondOK(c, sol)
}

func (s *Server) record(req model.GenerationRequest, sol *model.Solution) {
	if s.history == nil {
		return
	}
	rec, err := model.NewHistoryRecord(req, sol, s.provider.Name())
	if err == nil {
		err = s.history.Save(rec)
	}
	if err != nil {
		config.DebugLog.Warnw("failed to save history record", "error", err)
	}
}

func (s *Server) handleHistory(c *gin.Context) {
	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			RespondError(c, http.StatusBadRequest, "invalid_limit", fmt.Errorf("limit must be a positive integer"))
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	items := []historyItem{}
	if s.history != nil {
		records, err := s.history.List(limit)
		if err != nil {
			RespondError(c, http.StatusInternalServerError, "storage_error", err)
			return
		}
		for _, r := range records {
			items = append(items, toHistoryItem(r))
		}
	}
	RespondOK(c, gin.H{"records": items})
}

func (s *Server) loadRecord(c *gin.Context) (*storage.Record, bool) {
	if s.history == nil {
		RespondError(c, http.StatusNotFound, "not_found", storage.ErrNotFound)
		return nil, false
	}
	rec, err := s.history.Load(c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		RespondError(c, http.StatusNotFound, "not_found", err)
		return nil, false
	}
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "storage_error", err)
		return nil, false
	}
	return rec, true
}

func (s *Server) handleHistoryRecord(c *gin.Context) {
	rec, ok := s.loadRecord(c)
	if !ok {
		return
	}
	sol, err := model.DecodeRecord(*rec)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "storage_error", err)
		return
	}
	RespondOK(c, historyDetail{historyItem: toHistoryItem(*rec), Solution: sol})
}

func (s *Server) handleHistoryDelete(c *gin.Context) {
	if s.history == nil {
		RespondError(c, http.StatusNotFound, "not_found", storage.ErrNotFound)
		return
	}
	err := s.history.Delete(c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		RespondError(c, http.StatusNotFound, "not_found", err)
		return
	}
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "storage_error", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleProgress(c *gin.Context) {
	items := []topicItem{}
	if s.history != nil {
		topics, err := s.history.Progress()
		if err != nil {
			RespondError(c, http.StatusInternalServerError, "storage_error", err)
			return
		}
		for _, t := range topics {
			items = append(items, topicItem{
				Topic:          t.Topic,
				ProblemsSolved: t.ProblemsSolved,
				Consistent:     t.Consistent,
				Score:          t.Score,
			})
		}
	}
	RespondOK(c, gin.H{"topics": items})
}

func (s *Server) handleHealth(c *gin.Context) {
	credential := "ok"
	if !s.ready() {
		credential = "missing"
	}
	RespondOK(c, gin.H{
		"status":     "ok",
		"provider":   s.cfg.Provider,
		"credential": credential,
	})
}
