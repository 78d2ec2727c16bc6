package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"surveyflow/internal/config"
	"surveyflow/internal/model"
)

var ErrNotFound = errors.New("not found upstream")

// StatusError is a non-2xx reply from the survey backend.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream %s %s returned %d: %s", e.Method, e.Path, e.Status, e.Body)
}

// Client talks to the survey backend's REST API: it reads survey
// definitions and writes response submissions. Calls are never retried.
type Client struct {
	baseURL        string
	token          string
	definitionPath string
	submitPath     string
	httpClient     *http.Client
	log            *zap.Logger
}

// New creates a client for the configured upstream
func New(cfg config.Upstream, log *zap.Logger) *Client {
	if cfg.Token == "" {
		log.Warn("upstream token not set; requests are sent unauthenticated")
	}
	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		token:          cfg.Token,
		definitionPath: cfg.DefinitionPath,
		submitPath:     cfg.SubmitPath,
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		log:            log.Named("upstream"),
	}
}

// GetSurvey fetches a survey definition. It returns ErrNotFound when the
// backend answers 404.
func (c *Client) GetSurvey(ctx context.Context, id int) (*model.Survey, error) {
	path := fmt.Sprintf(c.definitionPath, id)

	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.Status == http.StatusNotFound {
			return nil, fmt.Errorf("survey %d: %w", id, ErrNotFound)
		}
		return nil, err
	}

	var survey model.Survey
	if err := json.Unmarshal(body, &survey); err != nil {
		return nil, fmt.Errorf("failed to parse survey definition: %w", err)
	}
	return &survey, nil
}

// Submit posts a finished survey. Any 2xx is success.
func (c *Client) Submit(ctx context.Context, req *model.SubmitRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode submission: %w", err)
	}
	if _, err := c.do(ctx, http.MethodPost, c.submitPath, bytes.NewReader(payload)); err != nil {
		return err
	}
	c.log.Info("responses submitted",
		zap.Int("survey_id", req.SurveyID),
		zap.String("context_reference", req.ContextReference),
		zap.Int("entries", len(req.Responses)))
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	c.log.Debug("request", zap.String("method", method), zap.String("path", path))

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("upstream %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn("upstream error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return nil, &StatusError{Method: method, Path: path, Status: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}
	return respBody, nil
}
