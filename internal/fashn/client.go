package fashn

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// caps error bodies kept in messages
const maxErrorBody = 512

// shared HTTP client for remote API calls, per-call deadlines come from the context
var defaultHTTPClient = &http.Client{
	Timeout: 2 * time.Minute,
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
}

// talks to the remote service over HTTP
type HTTPClient struct {
	config     Config
	httpClient *http.Client
	limiter    *rate.Limiter
}

// creates a new HTTP client for the remote service
func NewHTTPClient(config Config) *HTTPClient {
	config = config.withDefaults()
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	burst := max(int(config.RequestsPerSecond), 1)

	return &HTTPClient{
		config:     config,
		httpClient: defaultHTTPClient,
		limiter:    rate.NewLimiter(rate.Limit(config.RequestsPerSecond), burst),
	}
}

// replaces the underlying http client
func (c *HTTPClient) WithHTTPClient(hc *http.Client) *HTTPClient {
	c.httpClient = hc
	return c
}

// starts a remote job and returns its id
func (c *HTTPClient) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	opts := req.Options

	body, err := json.Marshal(runRequest{
		ModelImage:       req.PersonImage,
		GarmentImage:     req.GarmentImage,
		Category:         opts.Category,
		Mode:             opts.Mode,
		Seed:             opts.Seed,
		NumSamples:       opts.NumSamples,
		SegmentationFree: opts.SegmentationFree,
		ModerationLevel:  opts.ModerationLevel,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.config.SubmitTimeout)
	defer cancel()

	resp, err := c.do(ctx, callCtx, http.MethodPost, c.config.BaseURL+"/run", body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: run returned status %d: %s", ErrRemoteUnavailable, resp.StatusCode, readSnippet(resp.Body))
	}

	var run runResponse
	if err := json.NewDecoder(resp.Body).Decode(&run); err != nil {
		return "", decodeError(ctx, callCtx, "run", err)
	}

	if strings.TrimSpace(run.ID) == "" {
		return "", fmt.Errorf("%w: run response has no id", ErrRemoteProtocol)
	}

	return run.ID, nil
}

// fetches the current status of a remote job
func (c *HTTPClient) Poll(ctx context.Context, remoteID string) (*Status, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.config.PollTimeout)
	defer cancel()

	resp, err := c.do(ctx, callCtx, http.MethodGet, c.config.BaseURL+"/status/"+url.PathEscape(remoteID), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode == http.StatusNotFound {
		return &Status{State: StateFailed, Reason: "job not found"}, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status returned %d: %s", ErrRemoteUnavailable, resp.StatusCode, readSnippet(resp.Body))
	}

	var status statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, decodeError(ctx, callCtx, "status", err)
	}

	return mapStatus(status), nil
}

// sends a request under callCtx; failures become ErrRemoteUnavailable unless ctx itself ended
func (c *HTTPClient) do(ctx, callCtx context.Context, method, target string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(callCtx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if err := c.limiter.Wait(callCtx); err != nil {
		if parent := ctx.Err(); parent != nil {
			return nil, parent
		}

		return nil, fmt.Errorf("%w: rate limiter: %v", ErrRemoteUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if parent := ctx.Err(); parent != nil {
			return nil, parent
		}

		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}

	return resp, nil
}

// a body cut short by a deadline is transient, anything else is a protocol error
func decodeError(ctx, callCtx context.Context, call string, err error) error {
	if parent := ctx.Err(); parent != nil {
		return parent
	}

	if callCtx.Err() != nil {
		return fmt.Errorf("%w: %s response read timed out: %v", ErrRemoteUnavailable, call, err)
	}

	return fmt.Errorf("%w: failed to decode %s response: %v", ErrRemoteProtocol, call, err)
}

func mapStatus(resp statusResponse) *Status {
	status := &Status{Raw: resp.Status}

	switch strings.ToLower(resp.Status) {
	case "starting", "in_queue", "queued":
		status.State = StateQueued
	case "processing":
		status.State = StateProcessing
	case "completed":
		status.State = StateCompleted
		status.Outputs = resp.Output
	case "failed":
		status.State = StateFailed
		status.Reason = resp.Error.message()
		if status.Reason == "" {
			status.Reason = "unknown error"
		}
	default:
		status.State = StateUnknown
	}

	return status
}

func readSnippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, maxErrorBody)) //nolint:errcheck
	return strings.TrimSpace(string(b))
}

// error field of a status response
type rawError struct {
	text string
}

func (e *rawError) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		e.text = s
		return nil
	}

	var obj struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return errors.New("error field is neither a string nor an object")
	}

	switch {
	case obj.Name != "" && obj.Message != "":
		e.text = obj.Name + ": " + obj.Message
	case obj.Message != "":
		e.text = obj.Message
	default:
		e.text = obj.Name
	}

	return nil
}

func (e rawError) message() string {
	return e.text
}
