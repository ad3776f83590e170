package model

import (
	"fmt"
	"net/http"
	"os"
	"strings"
)

// ImageData is an inline image attached to a prompt.
type ImageData struct {
	Data     []byte `json:"data"`
	MIMEType string `json:"mime_type"`
	Name     string `json:"name,omitempty"`
}

// PartKind tells text parts and image parts apart.
type PartKind int

const (
	PartText PartKind = iota
	PartImage
)

// Part is one ordered piece of request content.
type Part struct {
	Kind  PartKind
	Text  string
	Image *ImageData
}

// SolveInput is what the user submitted.
type SolveInput struct {
	Prompt string
	Image  *ImageData
	Mode   Mode
}

// ModelSet maps the mode tiers and the tutor to concrete model identifiers of
// one provider.
type ModelSet struct {
	Quick string
	Deep  string
	Chat  string
}

// ForTier returns the model id serving tier.
func (s ModelSet) ForTier(t ModelTier) string {
	if t == TierFlash {
		return s.Quick
	}
	return s.Deep
}

// GenerationRequest is a fully specified solve request.
type GenerationRequest struct {
	Prompt            string
	Image             *ImageData
	Mode              Mode
	Model             string
	SystemInstruction string
	ThinkingBudget    int32
	Schema            *Schema
}

// Parts returns the request content with non-text parts first.
func (r GenerationRequest) Parts() []Part {
	parts := make([]Part, 0, 2)
	if r.Image != nil && len(r.Image.Data) > 0 {
		parts = append(parts, Part{Kind: PartImage, Image: r.Image})
	}
	parts = append(parts, Part{Kind: PartText, Text: r.Prompt})
	return parts
}

// HasImage reports whether an image part is present.
func (r GenerationRequest) HasImage() bool {
	return r.Image != nil && len(r.Image.Data) > 0
}

// IsEmpty reports whether the input carries neither text nor an image.
func (in SolveInput) IsEmpty() bool {
	return strings.TrimSpace(in.Prompt) == "" && (in.Image == nil || len(in.Image.Data) == 0)
}

// BuildRequest turns user input into a GenerationRequest using the mode table.
// It has no side effects.
func BuildRequest(in SolveInput, models ModelSet) (GenerationRequest, error) {
	if in.IsEmpty() {
		return GenerationRequest{}, ErrEmptyInput
	}
	profile := in.Mode.Profile()

	req := GenerationRequest{
		Prompt:            in.Prompt,
		Mode:              profile.Mode,
		Model:             models.ForTier(profile.Tier),
		SystemInstruction: profile.SystemInstruction,
		ThinkingBudget:    profile.ThinkingBudget,
		Schema:            SolutionSchema,
	}
	if in.Image != nil && len(in.Image.Data) > 0 {
		req.Image = in.Image
	}
	return req, nil
}

// maxImageBytes bounds attachments read from disk.
const maxImageBytes = 20 << 20

// LoadImage reads an image file and sniffs its media type.
func LoadImage(path string) (*ImageData, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat image: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > maxImageBytes {
		return nil, fmt.Errorf("image too large: %d bytes", info.Size())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return nil, fmt.Errorf("unsupported file type %s", mime)
	}
	return &ImageData{Data: data, MIMEType: mime, Name: info.Name()}, nil
}
