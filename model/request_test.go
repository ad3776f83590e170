package model_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"edusolver/model"
	"edusolver/provider/testutil"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		input   string
		want    model.Mode
		wantErr bool
	}{
		{"quick", model.ModeQuick, false},
		{"DEEP", model.ModeDeep, false},
		{" deep ", model.ModeDeep, false},
		{"fast", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := model.ParseMode(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestModeProfiles(t *testing.T) {
	for _, mode := range []model.Mode{model.ModeQuick, model.ModeDeep} {
		if _, ok := model.ModeProfiles[mode]; !ok {
			t.Errorf("mode %q has no profile", mode)
		}
	}

	quick := model.ModeQuick.Profile()
	if quick.ThinkingBudget != 0 || quick.Tier != model.TierFlash || quick.ShowsValidation || quick.ExpectsAlternative {
		t.Errorf("quick profile = %+v", quick)
	}

	deep := model.ModeDeep.Profile()
	if deep.ThinkingBudget != model.DeepThinkingBudget || deep.Tier != model.TierPro || !deep.ShowsValidation || !deep.ExpectsAlternative {
		t.Errorf("deep profile = %+v", deep)
	}
	if model.DeepThinkingBudget != 32768 {
		t.Errorf("DeepThinkingBudget = %d", model.DeepThinkingBudget)
	}
}

func TestBuildRequest(t *testing.T) {
	models := testutil.TestModels()
	img := &model.ImageData{Data: testutil.PNGHeader, MIMEType: "image/png"}

	tests := []struct {
		name       string
		input      model.SolveInput
		wantModel  string
		wantBudget int32
		wantParts  []model.PartKind
	}{
		{
			name:       "quick text",
			input:      model.SolveInput{Prompt: "2+2", Mode: model.ModeQuick},
			wantModel:  "flash-model",
			wantBudget: 0,
			wantParts:  []model.PartKind{model.PartText},
		},
		{
			name:       "deep image only",
			input:      model.SolveInput{Prompt: "", Image: img, Mode: model.ModeDeep},
			wantModel:  "pro-model",
			wantBudget: 32768,
			wantParts:  []model.PartKind{model.PartImage, model.PartText},
		},
		{
			name:       "deep text and image",
			input:      model.SolveInput{Prompt: "Find the area", Image: img, Mode: model.ModeDeep},
			wantModel:  "pro-model",
			wantBudget: 32768,
			wantParts:  []model.PartKind{model.PartImage, model.PartText},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := model.BuildRequest(tt.input, models)
			if err != nil {
				t.Fatalf("BuildRequest() error = %v", err)
			}
			if req.Model != tt.wantModel {
				t.Errorf("Model = %q, want %q", req.Model, tt.wantModel)
			}
			if req.ThinkingBudget != tt.wantBudget {
				t.Errorf("ThinkingBudget = %d, want %d", req.ThinkingBudget, tt.wantBudget)
			}
			if req.Schema != model.SolutionSchema {
				t.Error("Schema is not SolutionSchema")
			}
			if req.SystemInstruction != tt.input.Mode.Profile().SystemInstruction {
				t.Error("SystemInstruction does not come from the mode table")
			}

			parts := req.Parts()
			if len(parts) != len(tt.wantParts) {
				t.Fatalf("Parts() len = %d, want %d", len(parts), len(tt.wantParts))
			}
			for i, kind := range tt.wantParts {
				if parts[i].Kind != kind {
					t.Errorf("Parts()[%d].Kind = %v, want %v", i, parts[i].Kind, kind)
				}
			}
		})
	}
}

func TestBuildRequest_EmptyInput(t *testing.T) {
	inputs := []model.SolveInput{
		{Prompt: "", Mode: model.ModeQuick},
		{Prompt: "   \n", Mode: model.ModeDeep},
		{Prompt: "", Image: &model.ImageData{}, Mode: model.ModeDeep},
	}
	for _, in := range inputs {
		if _, err := model.BuildRequest(in, testutil.TestModels()); !errors.Is(err, model.ErrEmptyInput) {
			t.Errorf("BuildRequest(%+v) error = %v, want ErrEmptyInput", in, err)
		}
	}
}

func TestLoadImage(t *testing.T) {
	dir := t.TempDir()

	pngPath := filepath.Join(dir, "graph.png")
	if err := os.WriteFile(pngPath, testutil.PNGHeader, 0600); err != nil {
		t.Fatal(err)
	}
	img, err := model.LoadImage(pngPath)
	if err != nil {
		t.Fatalf("LoadImage() error = %v", err)
	}
	if img.MIMEType != "image/png" || img.Name != "graph.png" {
		t.Errorf("LoadImage() = %s %s", img.MIMEType, img.Name)
	}

	txtPath := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(txtPath, []byte("just text"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := model.LoadImage(txtPath); err == nil {
		t.Error("LoadImage() accepted a text file")
	}

	if _, err := model.LoadImage(filepath.Join(dir, "missing.png")); err == nil {
		t.Error("LoadImage() accepted a missing file")
	}
}
