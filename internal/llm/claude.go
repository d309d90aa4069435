// Package llm asks the Anthropic messages API for conversion templates
// that map an API response shape onto a user-created database table.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const (
	defaultEndpoint  = "https://api.anthropic.com/v1"
	defaultModel     = "claude-3-5-sonnet-20241022"
	anthropicVersion = "2023-06-01"
)

// Client talks to the Anthropic messages API.
type Client struct {
	Model string

	apiKey   string
	endpoint string
	client   *http.Client
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	Messages    []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
	Error   *apiError      `json:"error,omitempty"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewClient creates an API client. The key may come from configuration or
// the ANTHROPIC_API_KEY environment variable; an empty key is an error so
// callers can degrade to manual mapping instead.
func NewClient(apiKey string) (*Client, error) {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("anthropic API key not configured")
	}
	endpoint := os.Getenv("ANTHROPIC_API_ENDPOINT")
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Client{
		Model:    defaultModel,
		apiKey:   apiKey,
		endpoint: endpoint,
		client:   &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// complete sends a single-turn prompt and returns the text reply.
func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(messagesRequest{
		Model:       c.Model,
		MaxTokens:   2000,
		Temperature: 0.1,
		Messages:    []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/messages", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call anthropic API: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read anthropic response: %w", err)
	}

	var parsed messagesResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode anthropic response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("anthropic API error: %s: %s", parsed.Error.Type, parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("anthropic API returned status %d", resp.StatusCode)
	}
	for _, block := range parsed.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", errors.New("anthropic response contained no text")
}

// GenerateTemplate asks the model for a field mapping between an API
// response schema and a table's columns, and parses the reply into a
// Mapping the store can apply row by row.
func (c *Client) GenerateTemplate(ctx context.Context, specName string, responseSchema map[string]any, tableDDL, tableName string) (*Mapping, error) {
	prompt, err := conversionPrompt(specName, responseSchema, tableDDL, tableName)
	if err != nil {
		return nil, err
	}
	reply, err := c.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	mapping, err := ParseMapping(reply)
	if err != nil {
		return nil, fmt.Errorf("model reply did not contain a usable mapping: %w", err)
	}
	mapping.Table = tableName
	return mapping, nil
}

func conversionPrompt(specName string, responseSchema map[string]any, tableDDL, tableName string) (string, error) {
	schemaJSON, err := json.MarshalIndent(responseSchema, "", "  ")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`You are an expert data transformation engineer. Produce a JSON mapping that converts API response objects into rows for a database table.

OpenAPI spec name: %s

API response schema (JSON Schema format):
%s

Target table (CREATE TABLE statement):
%s

Target table name: %s

Requirements:
1. Reply with a single JSON object of the form {"columns": {"<db_column>": "<response_field_path>"}}.
2. Field paths use dots for nesting, e.g. "address.city".
3. Only include columns that exist in both the response schema and the table.
4. Do not include any explanation outside the JSON object.
`, specName, schemaJSON, tableDDL, tableName), nil
}
