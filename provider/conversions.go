package provider

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/ollama/ollama/api"
	"github.com/openai/openai-go/v3"
	"google.golang.org/genai"

	"edusolver/model"
)

// ConvertToGenaiSchema translates a model.Schema into the Gemini dialect.
// Property order is carried through so the model writes the understanding block
// before the solution.
func ConvertToGenaiSchema(s *model.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:             genaiType(s.Type),
		Description:      s.Description,
		PropertyOrdering: s.Order,
		Required:         s.Required,
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, p := range s.Properties {
			out.Properties[name] = ConvertToGenaiSchema(p)
		}
	}
	if s.Items != nil {
		out.Items = ConvertToGenaiSchema(s.Items)
	}
	return out
}

func genaiType(t model.SchemaType) genai.Type {
	switch t {
	case model.TypeObject:
		return genai.TypeObject
	case model.TypeArray:
		return genai.TypeArray
	case model.TypeBoolean:
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}

// ConvertToGenaiParts converts ordered request parts. Images become inline blobs.
func ConvertToGenaiParts(parts []model.Part) []*genai.Part {
	out := make([]*genai.Part, 0, len(parts))
	for _, p := range parts {
		switch p.Kind {
		case model.PartImage:
			out = append(out, genai.NewPartFromBytes(p.Image.Data, p.Image.MIMEType))
		default:
			out = append(out, genai.NewPartFromText(p.Text))
		}
	}
	return out
}

// ConvertToGenaiHistory converts prior tutor turns to Gemini contents.
func ConvertToGenaiHistory(turns []model.ChatTurn) []*genai.Content {
	out := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		role := genai.Role(genai.RoleUser)
		if t.Role == model.RoleModel {
			role = genai.RoleModel
		}
		out = append(out, genai.NewContentFromText(t.Text, role))
	}
	return out
}

// ConvertToOpenAIUserMessage builds the solve request user message. A request
// with an image uses the multi-part content form with the image first.
func ConvertToOpenAIUserMessage(req model.GenerationRequest) openai.ChatCompletionMessageParamUnion {
	if !req.HasImage() {
		return openai.UserMessage(req.Prompt)
	}
	parts := make([]openai.ChatCompletionContentPartUnionParam, 0, 2)
	for _, p := range req.Parts() {
		switch p.Kind {
		case model.PartImage:
			parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
				URL: DataURL(p.Image),
			}))
		default:
			if p.Text != "" {
				parts = append(parts, openai.TextContentPart(p.Text))
			}
		}
	}
	return openai.UserMessage(parts)
}

// ConvertToOpenAIChatMessages flattens a tutor request into OpenAI messages:
// system instruction, prior turns, new user message.
func ConvertToOpenAIChatMessages(req model.ChatRequest) []openai.ChatCompletionMessageParamUnion {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.History)+2)
	if req.SystemInstruction != "" {
		msgs = append(msgs, openai.SystemMessage(req.SystemInstruction))
	}
	for _, t := range req.History {
		if t.Role == model.RoleModel {
			msgs = append(msgs, openai.AssistantMessage(t.Text))
		} else {
			msgs = append(msgs, openai.UserMessage(t.Text))
		}
	}
	return append(msgs, openai.UserMessage(req.Message))
}

// ConvertToAnthropicUserMessage builds the solve request message with the image
// as a base64 block ahead of the prompt.
func ConvertToAnthropicUserMessage(req model.GenerationRequest) anthropic.MessageParam {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, 2)
	for _, p := range req.Parts() {
		switch p.Kind {
		case model.PartImage:
			blocks = append(blocks, anthropic.NewImageBlockBase64(
				p.Image.MIMEType,
				base64.StdEncoding.EncodeToString(p.Image.Data),
			))
		default:
			if p.Text != "" {
				blocks = append(blocks, anthropic.NewTextBlock(p.Text))
			}
		}
	}
	return anthropic.NewUserMessage(blocks...)
}

// ConvertToAnthropicMessages converts tutor history plus the new message.
func ConvertToAnthropicMessages(req model.ChatRequest) []anthropic.MessageParam {
	msgs := make([]anthropic.MessageParam, 0, len(req.History)+1)
	for _, t := range req.History {
		if t.Role == model.RoleModel {
			msgs = append(msgs, anthropic.NewAssistantMessage(anthropic.NewTextBlock(t.Text)))
		} else {
			msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(t.Text)))
		}
	}
	return append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(req.Message)))
}

// ConvertToOllamaMessages converts tutor history plus the new message. Gemini's
// "model" role is Ollama's "assistant".
func ConvertToOllamaMessages(req model.ChatRequest) []api.Message {
	msgs := make([]api.Message, 0, len(req.History)+2)
	if req.SystemInstruction != "" {
		msgs = append(msgs, api.Message{Role: "system", Content: req.SystemInstruction})
	}
	for _, t := range req.History {
		role := "user"
		if t.Role == model.RoleModel {
			role = "assistant"
		}
		msgs = append(msgs, api.Message{Role: role, Content: t.Text})
	}
	return append(msgs, api.Message{Role: "user", Content: req.Message})
}

// ConvertToOllamaSolveMessages builds the solve request. Ollama carries images
// as raw bytes on the message rather than as separate parts.
func ConvertToOllamaSolveMessages(req model.GenerationRequest) []api.Message {
	user := api.Message{Role: "user", Content: req.Prompt}
	if req.HasImage() {
		user.Images = []api.ImageData{req.Image.Data}
	}
	return []api.Message{
		{Role: "system", Content: req.SystemInstruction},
		user,
	}
}

// DataURL encodes an image as a data: URL.
func DataURL(img *model.ImageData) string {
	return fmt.Sprintf("data:%s;base64,%s", img.MIMEType, base64.StdEncoding.EncodeToString(img.Data))
}

// SchemaJSON renders the schema as compact JSON Schema bytes.
func SchemaJSON(s *model.Schema) (json.RawMessage, error) {
	b, err := json.Marshal(s.JSONSchema())
	if err != nil {
		return nil, fmt.Errorf("failed to encode response schema: %w", err)
	}
	return b, nil
}

// SchemaInstruction appends the schema to a system instruction for services
// without a structured output parameter.
func SchemaInstruction(instruction string, s *model.Schema) (string, error) {
	b, err := json.MarshalIndent(s.JSONSchema(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode response schema: %w", err)
	}
	return instruction + "\n\nRespond with a single JSON object and nothing else. " +
		"It must conform to this JSON Schema:\n" + string(b), nil
}
