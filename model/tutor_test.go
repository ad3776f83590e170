package model_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"edusolver/model"
	"edusolver/provider/testutil"
)

type sessionSink struct {
	mu sync.Mutex
	s  model.Session
	// texts records the reply text after every chunk.
	texts []string
}

func (k *sessionSink) emit(ev model.Event) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.s = k.s.Apply(ev)
	if _, ok := ev.(model.ChatChunk); ok {
		if r, ok := k.s.LastReply(); ok {
			k.texts = append(k.texts, r.Text)
		}
	}
}

func sendChat(t *testing.T, tutor *model.Tutor, keepPartial bool, text string) (*sessionSink, string, error) {
	t.Helper()
	sink := &sessionSink{s: model.NewSession(model.ModeDeep, keepPartial)}
	sent, err := sink.s.BeginChat(text)
	if err != nil {
		t.Fatal(err)
	}
	history := sink.s.History()
	sink.emit(sent)
	reply, err := tutor.Send(context.Background(), sent.RunID, history, text, sink.emit)
	return sink, reply, err
}

func TestTutor_StreamsInOrder(t *testing.T) {
	mock := testutil.NewMockProvider("mock")
	mock.ChatStreamFunc = func(ctx context.Context, req model.ChatRequest, cb model.StreamCallback) error {
		return testutil.StreamFragments(cb, "Hel", "", "lo", " world")
	}

	sink, reply, err := sendChat(t, model.NewTutor(mock, "chat-model"), false, "hello?")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if reply != "Hello world" {
		t.Errorf("reply = %q", reply)
	}

	for i := 1; i < len(sink.texts); i++ {
		if len(sink.texts[i]) < len(sink.texts[i-1]) {
			t.Errorf("displayed text shrank: %v", sink.texts)
		}
	}
	last, _ := sink.s.LastReply()
	if last.Text != "Hello world" || sink.s.Chatting {
		t.Errorf("final reply = %+v chatting=%v", last, sink.s.Chatting)
	}

	reqs := mock.ChatRequests()
	if len(reqs) != 1 {
		t.Fatalf("ChatStream called %d times", len(reqs))
	}
	if reqs[0].SystemInstruction != model.TutorInstruction || reqs[0].Model != "chat-model" || reqs[0].Message != "hello?" {
		t.Errorf("request = %+v", reqs[0])
	}
	if len(reqs[0].History) != 0 {
		t.Errorf("greeting leaked into history: %+v", reqs[0].History)
	}
}

func TestTutor_FailureMidStream(t *testing.T) {
	boom := errors.New("stream reset")
	mock := testutil.NewMockProvider("mock")
	mock.ChatStreamFunc = func(ctx context.Context, req model.ChatRequest, cb model.StreamCallback) error {
		if err := testutil.StreamFragments(cb, "First ", "second ", "third"); err != nil {
			return err
		}
		return boom
	}

	sink, partial, err := sendChat(t, model.NewTutor(mock, "chat-model"), false, "explain")
	if !errors.Is(err, boom) {
		t.Fatalf("Send() error = %v", err)
	}
	if partial != "First second third" {
		t.Errorf("partial = %q", partial)
	}

	last, _ := sink.s.LastReply()
	if last.Text != model.ChatFailureText {
		t.Errorf("displayed reply = %q, want the fallback only", last.Text)
	}
	for _, m := range sink.s.Messages {
		if strings.Contains(m.Text, "First") {
			t.Errorf("partial text still displayed: %q", m.Text)
		}
	}
}

func TestTutor_FailureKeepsPartialWhenConfigured(t *testing.T) {
	mock := testutil.NewMockProvider("mock")
	mock.ChatStreamFunc = func(ctx context.Context, req model.ChatRequest, cb model.StreamCallback) error {
		_ = testutil.StreamFragments(cb, "half an ", "answer")
		return errors.New("eof")
	}

	sink, _, _ := sendChat(t, model.NewTutor(mock, "chat-model"), true, "explain")
	n := len(sink.s.Messages)
	if sink.s.Messages[n-2].Text != "half an answer" || sink.s.Messages[n-1].Text != model.ChatFailureText {
		t.Errorf("messages = %+v", sink.s.Messages)
	}
}

func TestTutor_FailureBeforeFirstChunk(t *testing.T) {
	mock := testutil.NewMockProvider("mock")
	mock.ChatStreamFunc = func(ctx context.Context, req model.ChatRequest, cb model.StreamCallback) error {
		return errors.New("401")
	}

	sink, _, err := sendChat(t, model.NewTutor(mock, "chat-model"), false, "hi")
	if err == nil {
		t.Fatal("expected error")
	}
	// greeting, user, fallback
	if len(sink.s.Messages) != 3 {
		t.Errorf("messages = %+v", sink.s.Messages)
	}
}

func TestTutor_SendsHistory(t *testing.T) {
	mock := testutil.NewMockProvider("mock")
	tutor := model.NewTutor(mock, "chat-model")

	if _, err := tutor.Send(context.Background(), "run", testutil.TestHistory(), "and integrals?", func(model.Event) {}); err != nil {
		t.Fatal(err)
	}
	got := mock.ChatRequests()[0].History
	if len(got) != 2 || got[0].Role != model.RoleUser || got[1].Role != model.RoleModel {
		t.Errorf("history = %+v", got)
	}
}
