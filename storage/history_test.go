package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *HistoryStore {
	t.Helper()
	store, err := NewHistoryStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewHistoryStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestHistoryStore_SaveLoad(t *testing.T) {
	store := newTestStore(t)

	rec := &Record{
		Prompt:       "2+2",
		Mode:         "quick",
		Topic:        "Arithmetic",
		Difficulty:   "Easy",
		FinalAnswer:  "4",
		Consistent:   true,
		Provider:     "gemini",
		ModelName:    "gemini-3-flash-preview",
		SolutionJSON: `{"primary_solution":{"final_answer":"4"}}`,
	}
	if err := store.Save(rec); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if rec.ID == "" {
		t.Fatal("Save() did not assign an id")
	}

	got, err := store.Load(rec.ID)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Prompt != rec.Prompt || got.FinalAnswer != "4" || !got.Consistent {
		t.Errorf("Load() = %+v, want %+v", got, rec)
	}
	if got.ModelName != rec.ModelName {
		t.Errorf("ModelName = %q, want %q", got.ModelName, rec.ModelName)
	}
}

func TestHistoryStore_LoadMissing(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Load("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() error = %v, want ErrNotFound", err)
	}
	if err := store.Delete("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

func TestHistoryStore_ListOrderAndLimit(t *testing.T) {
	store := newTestStore(t)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, prompt := range []string{"first", "second", "third"} {
		rec := &Record{Prompt: prompt, Mode: "deep", Topic: "Algebra", CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := store.Save(rec); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	all, err := store.List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("List(0) returned %d records, want 3", len(all))
	}
	if all[0].Prompt != "third" || all[2].Prompt != "first" {
		t.Errorf("List() order = %s, %s, %s; want newest first", all[0].Prompt, all[1].Prompt, all[2].Prompt)
	}

	limited, err := store.List(2)
	if err != nil {
		t.Fatalf("List(2) error = %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("List(2) returned %d records, want 2", len(limited))
	}
}

func TestHistoryStore_Delete(t *testing.T) {
	store := newTestStore(t)

	rec := &Record{Prompt: "x", Mode: "quick", Topic: "Physics"}
	if err := store.Save(rec); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Delete(rec.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	records, err := store.List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("List() after delete = %d records, want 0", len(records))
	}
}

func TestHistoryStore_Progress(t *testing.T) {
	store := newTestStore(t)

	records := []Record{
		{Topic: "Calculus", Consistent: true},
		{Topic: "Calculus", Consistent: false},
		{Topic: "Calculus", Consistent: true},
		{Topic: "Kinematics", Consistent: true},
	}
	for i := range records {
		records[i].Mode = "deep"
		if err := store.Save(&records[i]); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	progress, err := store.Progress()
	if err != nil {
		t.Fatalf("Progress() error = %v", err)
	}
	if len(progress) != 2 {
		t.Fatalf("Progress() returned %d topics, want 2", len(progress))
	}

	calc := progress[0]
	if calc.Topic != "Calculus" || calc.ProblemsSolved != 3 || calc.Consistent != 2 {
		t.Errorf("progress[0] = %+v", calc)
	}
	if calc.Score < 66.6 || calc.Score > 66.7 {
		t.Errorf("Calculus score = %.2f, want ~66.67", calc.Score)
	}
	if progress[1].Score != 100 {
		t.Errorf("Kinematics score = %.2f, want 100", progress[1].Score)
	}
}

func TestHistoryStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()

	store, err := NewHistoryStore(dir)
	if err != nil {
		t.Fatalf("NewHistoryStore() error = %v", err)
	}
	if err := store.Save(&Record{Prompt: "kept", Mode: "quick", Topic: "Optics", Provider: "ollama", ModelName: "qwen3:8b"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	store.Close()

	reopened, err := NewHistoryStore(dir)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	records, err := reopened.List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 1 || records[0].Prompt != "kept" {
		t.Fatalf("records after reopen = %+v", records)
	}
	if records[0].Provider != "ollama" || records[0].ModelName != "qwen3:8b" {
		t.Errorf("provider columns = %q/%q", records[0].Provider, records[0].ModelName)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Algebra: quadratic equations", "Algebra-quadratic-equations"},
		{"  ", "untitled"},
		{"$x^{2}$ / 4", "x-2-4"},
		{"..hidden..", "hidden"},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "chat.json")
	tr := Transcript{
		Title:    "Derivatives",
		Messages: []TranscriptMessage{{Role: "user", Text: "What is a derivative?"}},
	}
	if err := ExportJSON(path, tr); err != nil {
		t.Fatalf("ExportJSON() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("perm = %o, want 0600", perm)
	}

	data, _ := os.ReadFile(path)
	var back Transcript
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if back.Title != "Derivatives" || len(back.Messages) != 1 {
		t.Errorf("round trip = %+v", back)
	}
}

func TestGenerateExportPath(t *testing.T) {
	t.Setenv("HOME", "/home/student")
	got := GenerateExportPath("solution", "Kinematics", ".md")
	if !strings.HasPrefix(got, filepath.Join("/home/student", "Downloads", "edusolver-solution-Kinematics-")) {
		t.Errorf("path = %q", got)
	}
	if filepath.Ext(got) != ".md" {
		t.Errorf("ext = %q", filepath.Ext(got))
	}
}
