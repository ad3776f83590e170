package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

const DefaultHost = "http://localhost:11434"

type Client struct {
	client  *api.Client
	baseURL string
}

type StreamCallback func(chunk string) error

// ChatOptions are the per-request knobs the solver uses.
type ChatOptions struct {
	Model    string
	Messages []api.Message
	// Format is a JSON schema constraining the reply. Nil means free text.
	Format json.RawMessage
	// Think turns the reasoning trace on or off. Nil leaves the model default
	// and must be used for models that reject the flag.
	Think  *bool
	Stream bool
}

func NewClient(baseURL string) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultHost
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("invalid Ollama URL: %q", baseURL)
	}

	client := api.NewClient(parsedURL, http.DefaultClient)

	return &Client{
		client:  client,
		baseURL: baseURL,
	}, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Chat sends a chat request and hands each content chunk to callback. With
// Stream false the callback runs once with the whole reply.
func (c *Client) Chat(ctx context.Context, opts ChatOptions, callback StreamCallback) error {
	req := &api.ChatRequest{
		Model:    opts.Model,
		Messages: opts.Messages,
		Stream:   func(b bool) *bool { return &b }(opts.Stream),
	}
	if len(opts.Format) > 0 {
		req.Format = opts.Format
	}
	if opts.Think != nil {
		req.Think = &api.ThinkValue{Value: *opts.Think}
	}

	respFunc := func(resp api.ChatResponse) error {
		if callback != nil {
			return callback(resp.Message.Content)
		}
		return nil
	}

	return c.client.Chat(ctx, req, respFunc)
}

type ModelInfo struct {
	Name string
	Size int64
}

func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	resp, err := c.client.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	models := make([]ModelInfo, len(resp.Models))
	for i, model := range resp.Models {
		models[i] = ModelInfo{
			Name: model.Name,
			Size: model.Size,
		}
	}

	return models, nil
}

// HasModel reports whether name is pulled. A missing tag matches ":latest".
func (c *Client) HasModel(ctx context.Context, name string) (bool, error) {
	models, err := c.ListModels(ctx)
	if err != nil {
		return false, err
	}
	want := normalizeTag(name)
	for _, m := range models {
		if normalizeTag(m.Name) == want {
			return true, nil
		}
	}
	return false, nil
}

func normalizeTag(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if !strings.Contains(name, ":") {
		name += ":latest"
	}
	return name
}

func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := c.client.List(ctx)
	return err
}

// thinkingModels lists families that accept the think flag.
var thinkingModels = []string{"qwen3", "deepseek-r1", "gpt-oss", "magistral"}

// SupportsThinking checks if a model family accepts the think flag. Sending it
// to other models makes Ollama reject the request.
func SupportsThinking(modelName string) bool {
	modelName = strings.ToLower(modelName)
	for _, prefix := range thinkingModels {
		if strings.HasPrefix(modelName, prefix) {
			return true
		}
	}
	return false
}
