// Package vision asks an OpenAI-compatible vision model which phone is in a
// photo.
//
// The client discovers the vision-capable models once, then tries them in
// order until one answers. It never retries a model.
package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/modcatalog/internal/datauri"
	"github.com/dmitrijs2005/modcatalog/internal/logging"
)

const DefaultBaseURL = "https://api.groq.com/openai/v1"

// discoverTimeout bounds the one-off model discovery request.
const discoverTimeout = 15 * time.Second

var (
	ErrNoAPIKey = errors.New("vision api key is not configured")

	// ErrExhausted is returned when every candidate model failed. It wraps the
	// last underlying error.
	ErrExhausted = errors.New("no vision model could answer")

	// ErrQuota marks a rate-limit or quota rejection.
	ErrQuota = errors.New("vision quota exceeded")

	// ErrUnidentified is returned when the model answered that it does not
	// know the phone.
	ErrUnidentified = errors.New("phone model not identified")
)

// FallbackModels are used when discovery fails or finds nothing.
var FallbackModels = []string{
	"meta-llama/llama-4-maverick-17b-128e-instruct",
	"meta-llama/llama-4-scout-17b-16e-instruct",
}

var visionKeywords = []string{"maverick", "scout", "vision", "llava", "pixtral"}

// UnknownReply is what the model is asked to answer when unsure.
const UnknownReply = "Unknown"

// APIError is a non-2xx reply or an error object from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return e.Message
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
}

type Config struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Logger     logging.Logger
}

type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	log     logging.Logger

	once   sync.Once
	models []string
}

func New(cfg Config) *Client {
	c := &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    cfg.HTTPClient,
		log:     cfg.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 60 * time.Second}
	}
	if c.log == nil {
		c.log = logging.Nop()
	}
	return c
}

// Enabled reports whether an API key is set.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// Models returns the candidate models, discovering them on first use. The
// result is kept for the life of the client, so discovery does not inherit
// the caller's cancellation.
func (c *Client) Models(ctx context.Context) []string {
	c.once.Do(func() {
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), discoverTimeout)
		defer cancel()

		models, err := c.discover(dctx)
		switch {
		case err != nil:
			c.log.Warn(ctx, "vision model discovery failed; using fallback models", "err", err)
			c.models = FallbackModels
		case len(models) == 0:
			c.log.Warn(ctx, "no vision models detected by name; using fallback models")
			c.models = FallbackModels
		default:
			c.log.Info(ctx, "vision models detected", "models", models)
			c.models = models
		}
	})
	return c.models
}

// Identify returns the model's "Brand Model" guess for the phone in image.
// knownModels are offered to the model as preferred answers.
func (c *Client) Identify(ctx context.Context, image []byte, knownModels []string) (string, error) {
	if !c.Enabled() {
		return "", ErrNoAPIKey
	}

	encoded, err := datauri.PrepareForVision(image)
	if err != nil {
		return "", fmt.Errorf("prepare image: %w", err)
	}
	imageURL := "data:image/jpeg;base64," + encoded
	prompt := Prompt(knownModels)

	var lastErr error
	for _, model := range c.Models(ctx) {
		c.log.Debug(ctx, "asking vision model", "model", model)

		reply, err := c.complete(ctx, model, prompt, imageURL)
		if err != nil {
			c.log.Warn(ctx, "vision model failed", "model", model, "err", err)
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if reply == "" {
			continue
		}

		c.log.Info(ctx, "vision model answered", "model", model, "reply", reply)
		if IsUnknown(reply) {
			return "", ErrUnidentified
		}
		return reply, nil
	}

	if lastErr == nil {
		return "", ErrExhausted
	}
	if IsQuota(lastErr) {
		return "", fmt.Errorf("%w: %w: %w", ErrExhausted, ErrQuota, lastErr)
	}
	return "", fmt.Errorf("%w: %w", ErrExhausted, lastErr)
}

// IsQuota reports whether err is a rate-limit rejection.
func IsQuota(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota")
}

// IsUnknown reports whether reply is the "cannot identify" marker.
func IsUnknown(reply string) bool {
	r := strings.ToLower(strings.Trim(strings.TrimSpace(reply), ".!"))
	return r == "unknown" || r == "desconocido"
}

type modelList struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

func (c *Client) discover(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	var list modelList
	if err := c.do(req, &list); err != nil {
		return nil, err
	}

	var models []string
	for _, m := range list.Data {
		id := strings.ToLower(m.ID)
		for _, kw := range visionKeywords {
			if strings.Contains(id, kw) {
				models = append(models, m.ID)
				break
			}
		}
	}
	return models, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) complete(ctx context.Context, model, prompt, image string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: prompt},
				{Type: "image_url", ImageURL: &imageURL{URL: image}},
			},
		}},
		Temperature: 0.1,
		MaxTokens:   50,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	var resp chatResponse
	if err := c.do(req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) > 0 {
		return strings.TrimSpace(resp.Choices[0].Message.Content), nil
	}
	if resp.Error != nil {
		return "", &APIError{Message: resp.Error.Message}
	}
	return "", nil
}

// do sends req and decodes a JSON body into out. Non-2xx replies become
// *APIError carrying the API's error message when there is one.
func (c *Client) do(req *http.Request, out any) error {
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return err
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		apiErr := &APIError{StatusCode: res.StatusCode, Message: http.StatusText(res.StatusCode)}
		var body chatResponse
		if json.Unmarshal(data, &body) == nil && body.Error != nil && body.Error.Message != "" {
			apiErr.Message = body.Error.Message
		}
		return apiErr
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
