package qa

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Generator produces an answer for a question.
type Generator interface {
	Generate(ctx context.Context, question string) (string, error)
}

// InferenceConfig configures the hosted text-generation endpoint.
type InferenceConfig struct {
	Endpoint     string
	Model        string
	Token        string
	MaxNewTokens int
	Timeout      time.Duration
}

// InferenceClient calls the Hugging Face Inference API.
type InferenceClient struct {
	config InferenceConfig
	url    string
}

var _ Generator = (*InferenceClient)(nil)

// NewInferenceClient creates an InferenceClient. The token is required.
func NewInferenceClient(config InferenceConfig) (*InferenceClient, error) {
	if config.Token == "" {
		return nil, errors.New("model access token is required")
	}
	if config.Model == "" {
		return nil, errors.New("model id is required")
	}
	return &InferenceClient{
		config: config,
		url:    strings.TrimRight(config.Endpoint, "/") + "/" + config.Model,
	}, nil
}

type inferenceRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
	Options    inferenceOptions    `json:"options"`
}

type inferenceParameters struct {
	MaxNewTokens   int  `json:"max_new_tokens"`
	ReturnFullText bool `json:"return_full_text"`
}

type inferenceOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

type inferenceResult struct {
	GeneratedText string `json:"generated_text"`
}

type inferenceError struct {
	Error string `json:"error"`
}

// Generate sends the question to the model and returns the decoded output,
// prompt included, as the model produced it.
func (c *InferenceClient) Generate(ctx context.Context, question string) (string, error) {
	timeout := c.config.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return "", ctx.Err()
		}
		if timeout <= 0 || remaining < timeout {
			timeout = remaining
		}
	}

	agent := fiber.Post(c.url)
	agent.Set(fiber.HeaderAuthorization, "Bearer "+c.config.Token)
	agent.JSON(inferenceRequest{
		Inputs: question,
		Parameters: inferenceParameters{
			MaxNewTokens:   c.config.MaxNewTokens,
			ReturnFullText: true,
		},
		Options: inferenceOptions{WaitForModel: true},
	})
	if timeout > 0 {
		agent.Timeout(timeout)
	}

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return "", fmt.Errorf("inference request failed: %w", errors.Join(errs...))
	}

	if code != fiber.StatusOK {
		var apiErr inferenceError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != "" {
			return "", fmt.Errorf("inference api returned %d: %s", code, apiErr.Error)
		}
		return "", fmt.Errorf("inference api returned %d", code)
	}

	var results []inferenceResult
	if err := json.Unmarshal(body, &results); err != nil {
		return "", fmt.Errorf("failed to decode inference response: %w", err)
	}
	if len(results) == 0 {
		return "", errors.New("inference response contained no generations")
	}

	return strings.TrimSpace(results[0].GeneratedText), nil
}
