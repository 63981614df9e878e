package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// NoAnswerText is returned when Gemini replies successfully but without text.
const NoAnswerText = "No se obtuvo respuesta de la IA."

// APIError carries a non-2xx answer from the Gemini REST API.
type APIError struct {
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Gemini API error (status %d): %s", e.StatusCode, string(e.Body))
}

// RESTClient calls generateContent over plain HTTP.
type RESTClient struct {
	httpClient      *http.Client
	baseURL         string
	apiVersion      string
	model           string
	apiKey          string
	maxOutputTokens int
}

type RESTConfig struct {
	BaseURL         string
	APIVersion      string
	Model           string
	APIKey          string
	MaxOutputTokens int
	Timeout         time.Duration
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generationConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func NewRESTClient(cfg RESTConfig) *RESTClient {
	return &RESTClient{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:         cfg.BaseURL,
		apiVersion:      cfg.APIVersion,
		model:           cfg.Model,
		apiKey:          cfg.APIKey,
		maxOutputTokens: cfg.MaxOutputTokens,
	}
}

func (c *RESTClient) endpoint() string {
	return fmt.Sprintf("%s/%s/models/%s:generateContent", c.baseURL, c.apiVersion, c.model)
}

// Generate forwards prompt verbatim. A non-2xx answer comes back as *APIError.
func (c *RESTClient) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{MaxOutputTokens: c.maxOutputTokens},
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call Gemini API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &APIError{StatusCode: resp.StatusCode, Body: body}
	}

	var apiResp generateResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("failed to parse Gemini response: %w", err)
	}

	if len(apiResp.Candidates) == 0 || len(apiResp.Candidates[0].Content.Parts) == 0 ||
		apiResp.Candidates[0].Content.Parts[0].Text == "" {
		return NoAnswerText, nil
	}
	return apiResp.Candidates[0].Content.Parts[0].Text, nil
}
