// Package vision classifies images with an OpenAI-compatible vision model.
package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/sortsense/internal/model"
	openai "github.com/sashabaranov/go-openai"
)

// Result is an image classification.
type Result struct {
	Category     model.CategoryID
	Label        string
	Descriptions []string
	Confidence   float64
}

// Config configures the client.
type Config struct {
	Hints    map[model.CategoryID][]string
	BaseURL  string
	APIKey   string
	Model    string
	Timeout  time.Duration
	MaxWidth int
}

// Client sends images to a chat completion endpoint and parses a JSON
// verdict.
type Client struct {
	api      *openai.Client
	registry *model.Registry
	hints    map[model.CategoryID][]string
	model    string
	timeout  time.Duration
	maxWidth int
}

type verdict struct {
	Category     string   `json:"category"`
	Label        string   `json:"label"`
	Descriptions []string `json:"descriptions"`
	Confidence   float64  `json:"confidence"`
}

// NewClient creates a vision client.
func NewClient(cfg Config, registry *model.Registry) *Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}

	return &Client{
		api:      openai.NewClientWithConfig(oc),
		registry: registry,
		hints:    cfg.Hints,
		model:    cfg.Model,
		timeout:  cfg.Timeout,
		maxWidth: cfg.MaxWidth,
	}
}

// ClassifyImage classifies the image at path. A category the registry does
// not know is reported as the default category with zero confidence.
func (c *Client) ClassifyImage(ctx context.Context, path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read image: %w", err)
	}
	jpegBytes, err := resizeToJPEG(data, c.maxWidth)
	if err != nil {
		return Result{}, err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: c.systemPrompt(),
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: "Classify this image.",
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURI(jpegBytes),
							Detail: openai.ImageURLDetailLow,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("vision request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Result{}, fmt.Errorf("vision response has no choices")
	}

	res, err := c.parse(resp.Choices[0].Message.Content)
	if err != nil {
		return Result{}, err
	}

	slog.Debug("Vision classification",
		"path", path,
		"category", res.Category,
		"confidence", res.Confidence,
		"duration_ms", time.Since(start).Milliseconds())

	return res, nil
}

func (c *Client) parse(content string) (Result, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var v verdict
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &v); err != nil {
		return Result{}, fmt.Errorf("failed to parse vision response: %w", err)
	}

	id, err := c.registry.Resolve(v.Category)
	if err != nil {
		return Result{Category: c.registry.Default()}, nil
	}

	conf := v.Confidence
	switch {
	case conf < 0:
		conf = 0
	case conf > 1:
		conf = 1
	}

	return Result{
		Category:     id,
		Confidence:   conf,
		Label:        strings.TrimSpace(v.Label),
		Descriptions: v.Descriptions,
	}, nil
}

func (c *Client) systemPrompt() string {
	var sb strings.Builder
	sb.WriteString("You sort personal files into folders. Pick the single category that best fits the image.\n\nCategories:\n")

	ids := make([]model.CategoryID, 0, len(c.hints))
	for id := range c.hints {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		desc := ""
		if cat, ok := c.registry.Get(id); ok {
			desc = cat.Description
		}
		fmt.Fprintf(&sb, "- %s: %s (looks like: %s)\n", id, desc, strings.Join(c.hints[id], "; "))
	}

	fmt.Fprintf(&sb, "\nIf nothing fits, use %q.\n", c.registry.Default())
	sb.WriteString(`Answer with JSON only: {"category": string, "confidence": number between 0 and 1, ` +
		`"label": short folder-friendly description of the subject, "descriptions": [matching phrases]}`)
	return sb.String()
}
