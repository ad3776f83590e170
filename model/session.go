package model

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Stage is one phase of the pipeline view.
type Stage string

const (
	StageIdle       Stage = "idle"
	StageAnalyzing  Stage = "analyzing"
	StageSolving    Stage = "solving"
	StageValidating Stage = "validating"
	StageComplete   Stage = "complete"
	StageError      Stage = "error"
)

// stageRank orders the in-flight stages. Terminal stages rank above all of them.
var stageRank = map[Stage]int{
	StageIdle:       0,
	StageAnalyzing:  1,
	StageSolving:    2,
	StageValidating: 3,
	StageComplete:   4,
	StageError:      4,
}

// InFlight reports whether a solve is running in this stage.
func (s Stage) InFlight() bool {
	return s == StageAnalyzing || s == StageSolving || s == StageValidating
}

// Page is a top-level screen.
type Page string

const (
	PageHome     Page = "home"
	PageSolver   Page = "solver"
	PageTutor    Page = "tutor"
	PageProgress Page = "progress"
	PageAbout    Page = "about"
)

// Pages lists every page in navigation order.
var Pages = []Page{PageHome, PageSolver, PageTutor, PageProgress, PageAbout}

// ChatMessage is one turn in the tutor conversation.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      ChatRole  `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	// Synthetic marks locally generated turns (greeting, error fallback).
	Synthetic bool `json:"synthetic,omitempty"`
}

// NewChatMessage creates a message with a fresh unique id.
func NewChatMessage(role ChatRole, text string) ChatMessage {
	return ChatMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		CreatedAt: time.Now(),
	}
}

func syntheticMessage(text string) ChatMessage {
	msg := NewChatMessage(RoleModel, text)
	msg.Synthetic = true
	return msg
}

// Session is the complete view state. It is a value: Apply returns a new
// Session and never mutates the receiver.
type Session struct {
	Page     Page       `json:"page"`
	Mode     Mode       `json:"mode"`
	Stage    Stage      `json:"stage"`
	RunID    string     `json:"run_id,omitempty"`
	Prompt   string     `json:"prompt,omitempty"`
	Image    *ImageData `json:"image,omitempty"`
	Solution *Solution  `json:"solution,omitempty"`
	// SolvedMode is the mode the current Solution was produced in.
	SolvedMode Mode   `json:"solved_mode,omitempty"`
	ErrorMsg   string `json:"error,omitempty"`

	Messages    []ChatMessage `json:"messages"`
	Chatting    bool          `json:"chatting"`
	ChatRunID   string        `json:"chat_run_id,omitempty"`
	ReplyID     string        `json:"reply_id,omitempty"`
	KeepPartial bool          `json:"keep_partial"`
}

// NewSession returns the initial state: home page, deep mode, idle pipeline and
// the tutor greeting.
func NewSession(mode Mode, keepPartial bool) Session {
	if _, ok := ModeProfiles[mode]; !ok {
		mode = ModeDeep
	}
	return Session{
		Page:        PageHome,
		Mode:        mode,
		Stage:       StageIdle,
		Messages:    []ChatMessage{syntheticMessage(GreetingText)},
		KeepPartial: keepPartial,
	}
}

// Busy reports whether a solve is in flight.
func (s Session) Busy() bool {
	return s.Stage.InFlight()
}

// BeginSolve validates a submission against the current state and returns the
// event that starts it.
func (s Session) BeginSolve(in SolveInput) (SolveStarted, error) {
	if in.IsEmpty() {
		return SolveStarted{}, ErrEmptyInput
	}
	if s.Busy() {
		return SolveStarted{}, ErrBusy
	}
	return SolveStarted{RunID: uuid.NewString(), Input: in}, nil
}

// BeginChat validates a tutor message and returns the event that sends it.
func (s Session) BeginChat(text string) (ChatSent, error) {
	if strings.TrimSpace(text) == "" {
		return ChatSent{}, ErrEmptyInput
	}
	if s.Chatting {
		return ChatSent{}, ErrBusy
	}
	return ChatSent{RunID: uuid.NewString(), Message: NewChatMessage(RoleUser, text)}, nil
}

// History returns the turns to send upstream: every non-synthetic message
// except the reply being streamed.
func (s Session) History() []ChatTurn {
	turns := make([]ChatTurn, 0, len(s.Messages))
	for _, m := range s.Messages {
		if m.Synthetic || (s.Chatting && m.ID == s.ReplyID) {
			continue
		}
		turns = append(turns, ChatTurn{Role: m.Role, Text: m.Text})
	}
	return turns
}

// LastReply returns the most recent model message.
func (s Session) LastReply() (ChatMessage, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleModel {
			return s.Messages[i], true
		}
	}
	return ChatMessage{}, false
}

func (s Session) messageIndex(id string) int {
	return slices.IndexFunc(s.Messages, func(m ChatMessage) bool { return m.ID == id })
}

// Apply returns the state after ev.
func (s Session) Apply(ev Event) Session {
	if ev == nil {
		return s
	}
	return ev.apply(s)
}

// Event is a session transition.
type Event interface {
	apply(Session) Session
}

// SolveStarted moves the pipeline to analyzing for a new run.
type SolveStarted struct {
	RunID string
	Input SolveInput
}

func (e SolveStarted) apply(s Session) Session {
	if s.Busy() || e.Input.IsEmpty() {
		return s
	}
	s.RunID = e.RunID
	s.Stage = StageAnalyzing
	s.Prompt = e.Input.Prompt
	s.Image = e.Input.Image
	if e.Input.Mode != "" {
		s.Mode = e.Input.Mode
	}
	s.Solution = nil
	s.SolvedMode = ""
	s.ErrorMsg = ""
	return s
}

// StageAdvanced moves a running solve forward.
type StageAdvanced struct {
	RunID string
	Stage Stage
}

func (e StageAdvanced) apply(s Session) Session {
	if e.RunID != s.RunID || !s.Busy() || !e.Stage.InFlight() {
		return s
	}
	if stageRank[e.Stage] <= stageRank[s.Stage] {
		return s
	}
	if e.Stage == StageValidating && !s.Mode.Profile().ShowsValidation {
		return s
	}
	s.Stage = e.Stage
	return s
}

// SolveSucceeded completes a run.
type SolveSucceeded struct {
	RunID    string
	Solution *Solution
}

func (e SolveSucceeded) apply(s Session) Session {
	if e.RunID != s.RunID || !s.Busy() {
		return s
	}
	s.Stage = StageComplete
	s.Solution = e.Solution
	s.SolvedMode = s.Mode
	return s
}

// SolveFailed ends a run in the error stage with the fixed user message.
type SolveFailed struct {
	RunID string
	Err   error
}

func (e SolveFailed) apply(s Session) Session {
	if e.RunID != s.RunID || !s.Busy() {
		return s
	}
	s.Stage = StageError
	s.Solution = nil
	s.ErrorMsg = SolveFailureText
	return s
}

// SolveCancelled abandons a run and returns the pipeline to idle.
type SolveCancelled struct {
	RunID string
}

func (e SolveCancelled) apply(s Session) Session {
	if e.RunID != s.RunID || !s.Busy() {
		return s
	}
	s.Stage = StageIdle
	return s
}

// ChatSent appends the user's message and opens a reply run.
type ChatSent struct {
	RunID   string
	Message ChatMessage
}

func (e ChatSent) apply(s Session) Session {
	if s.Chatting || strings.TrimSpace(e.Message.Text) == "" {
		return s
	}
	s.Messages = append(slices.Clone(s.Messages), e.Message)
	s.Chatting = true
	s.ChatRunID = e.RunID
	s.ReplyID = ""
	return s
}

// ChatChunk carries the full accumulated reply text. The first chunk of a run
// creates the model placeholder.
type ChatChunk struct {
	RunID   string
	ReplyID string
	Text    string
	At      time.Time
}

func (e ChatChunk) apply(s Session) Session {
	if !s.Chatting || e.RunID != s.ChatRunID {
		return s
	}
	if s.ReplyID == "" {
		s.ReplyID = e.ReplyID
		s.Messages = append(slices.Clone(s.Messages), ChatMessage{
			ID:        e.ReplyID,
			Role:      RoleModel,
			CreatedAt: e.At,
		})
	}
	if e.ReplyID != s.ReplyID {
		return s
	}
	i := s.messageIndex(s.ReplyID)
	// Text only grows; a shorter snapshot is stale.
	if i < 0 || len(e.Text) < len(s.Messages[i].Text) {
		return s
	}
	s.Messages = slices.Clone(s.Messages)
	s.Messages[i].Text = e.Text
	return s
}

// ChatCompleted closes a reply run.
type ChatCompleted struct {
	RunID string
}

func (e ChatCompleted) apply(s Session) Session {
	if !s.Chatting || e.RunID != s.ChatRunID {
		return s
	}
	s.Chatting = false
	s.ChatRunID = ""
	s.ReplyID = ""
	return s
}

// ChatFailed ends a reply run. The partial reply is dropped unless the session
// keeps partial replies; the fallback turn is always appended.
type ChatFailed struct {
	RunID    string
	Partial  string
	Err      error
	Fallback ChatMessage
}

func (e ChatFailed) apply(s Session) Session {
	if !s.Chatting || e.RunID != s.ChatRunID {
		return s
	}
	msgs := slices.Clone(s.Messages)
	if i := s.messageIndex(s.ReplyID); i >= 0 && s.ReplyID != "" {
		if s.KeepPartial && e.Partial != "" {
			msgs[i].Text = e.Partial
		} else {
			msgs = slices.Delete(msgs, i, i+1)
		}
	}
	fallback := e.Fallback
	if fallback.ID == "" {
		fallback = syntheticMessage(ChatFailureText)
	}
	s.Messages = append(msgs, fallback)
	s.Chatting = false
	s.ChatRunID = ""
	s.ReplyID = ""
	return s
}

// RecordOpened shows a stored solution on the solver page.
type RecordOpened struct {
	Prompt   string
	Mode     Mode
	Solution *Solution
}

func (e RecordOpened) apply(s Session) Session {
	if s.Busy() || e.Solution == nil {
		return s
	}
	s.RunID = ""
	s.Prompt = e.Prompt
	s.Image = nil
	if _, ok := ModeProfiles[e.Mode]; ok {
		s.Mode = e.Mode
	}
	s.Solution = e.Solution
	s.SolvedMode = s.Mode
	s.Stage = StageComplete
	s.ErrorMsg = ""
	s.Page = PageSolver
	return s
}

// ModeSelected switches the solve mode. Ignored while a solve runs.
type ModeSelected struct {
	Mode Mode
}

func (e ModeSelected) apply(s Session) Session {
	if s.Busy() {
		return s
	}
	if _, ok := ModeProfiles[e.Mode]; ok {
		s.Mode = e.Mode
	}
	return s
}

// PageSelected navigates to another page.
type PageSelected struct {
	Page Page
}

func (e PageSelected) apply(s Session) Session {
	if slices.Contains(Pages, e.Page) {
		s.Page = e.Page
	}
	return s
}

// ImageAttached sets the image for the next solve.
type ImageAttached struct {
	Image *ImageData
}

func (e ImageAttached) apply(s Session) Session {
	if s.Busy() || e.Image == nil {
		return s
	}
	s.Image = e.Image
	return s
}

// ImageCleared removes the pending image.
type ImageCleared struct{}

func (ImageCleared) apply(s Session) Session {
	if s.Busy() {
		return s
	}
	s.Image = nil
	return s
}

// Reset discards everything except page, mode and the partial-reply setting.
type Reset struct{}

func (Reset) apply(s Session) Session {
	next := NewSession(s.Mode, s.KeepPartial)
	next.Page = s.Page
	return next
}
