package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/civicsprep/civics-practice/internal/domain/entities"
)

// ErrServiceUnavailable is returned when the quiz backend cannot be
// reached or answers with a malformed payload.
var ErrServiceUnavailable = errors.New("quiz service unavailable")

const defaultTimeout = 30 * time.Second

// Client talks to the quiz backend. It performs no caching and no
// retries: every call is a single round trip.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a Client for the backend at baseURL. A nil httpClient
// gets a default with a request timeout so no call can hang forever.
func New(baseURL string, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

type testConfigsResponse struct {
	Configs []entities.TestConfig `json:"configs"`
}

type questionsResponse struct {
	Questions []entities.Question `json:"questions"`
}

type submitAnswerRequest struct {
	Answer string `json:"answer"`
}

type submitAnswerResponse struct {
	Result string `json:"result"`
}

// ListTestConfigs fetches the available test variants.
func (c *Client) ListTestConfigs(ctx context.Context) ([]entities.TestConfig, error) {
	var body testConfigsResponse
	if err := c.getJSON(ctx, "/api/test-configs", &body); err != nil {
		return nil, err
	}

	for _, cfg := range body.Configs {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
		}
	}

	return body.Configs, nil
}

// FetchQuestions fetches n random questions for the given test variant.
// The returned count is not validated here; the session controller
// checks it against the configured number of questions.
func (c *Client) FetchQuestions(ctx context.Context, n int, testType string) ([]entities.Question, error) {
	path := fmt.Sprintf("/api/questions?n=%d&testType=%s", n, url.QueryEscape(testType))

	var body questionsResponse
	if err := c.getJSON(ctx, path, &body); err != nil {
		return nil, err
	}

	return body.Questions, nil
}

// SubmitAnswer submits one answer for grading and returns the verdict.
// A transport failure or an unparseable result degrades to
// VerdictUnknown rather than an error, so a session can always proceed
// to the next question.
func (c *Client) SubmitAnswer(ctx context.Context, questionID int, answer, testType string) (entities.Verdict, error) {
	path := fmt.Sprintf("/api/submit-answer/%d?testType=%s", questionID, url.QueryEscape(testType))

	payload, err := json.Marshal(submitAnswerRequest{Answer: answer})
	if err != nil {
		return entities.VerdictUnknown, fmt.Errorf("marshal answer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return entities.VerdictUnknown, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("submit answer request failed", zap.Int("question_id", questionID), zap.Error(err))
		return entities.VerdictUnknown, nil
	}
	defer resp.Body.Close()

	var body submitAnswerResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.logger.Warn("submit answer response unreadable", zap.Int("question_id", questionID), zap.Error(err))
		return entities.VerdictUnknown, nil
	}

	return parseVerdict(body.Result), nil
}

// parseVerdict maps the backend's string-typed boolean to a verdict.
// Only the literal "true" counts as correct; other strings that parse
// as boolean false are incorrect; everything else is unknown.
func parseVerdict(result string) entities.Verdict {
	if result == "true" {
		return entities.VerdictCorrect
	}
	if v, err := strconv.ParseBool(result); err == nil && !v {
		return entities.VerdictIncorrect
	}
	return entities.VerdictUnknown
}

// getJSON performs a GET and decodes the response body, mapping every
// failure mode to ErrServiceUnavailable.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: create request: %v", ErrServiceUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status %d for %s", ErrServiceUnavailable, resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrServiceUnavailable, err)
	}

	return nil
}
