package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/alexanderramin/landminer/internal/domain"
	"github.com/alexanderramin/landminer/internal/logger"
)

const apiPrefix = "/api/v1"

// defaultRetryBackoff is the wait before the first retry; each later retry
// waits one more step.
const defaultRetryBackoff = 200 * time.Millisecond

// Config holds connection settings for the mining API.
type Config struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	MaxRetries int // applies to reads only; actions are sent once

	// RetryBackoff is the linear backoff step between read attempts.
	// Zero means defaultRetryBackoff.
	RetryBackoff time.Duration
}

// StartRequest is the body of POST /mining/start/.
type StartRequest struct {
	LandID  int64   `json:"land_id" validate:"required,gt=0"`
	ToolIDs []int64 `json:"tool_ids" validate:"required,min=1,unique,dive,gt=0"`
}

// Client provides access to the mining endpoints of the platform API.
type Client interface {
	ListSessions(ctx context.Context) ([]domain.MiningSession, error)
	GetSummary(ctx context.Context) (*domain.MiningSummary, error)
	ListLands(ctx context.Context) ([]domain.Land, error)
	ListTools(ctx context.Context) ([]domain.Tool, error)
	RateHistory(ctx context.Context, hours int) ([]domain.RatePoint, error)

	StartMining(ctx context.Context, req StartRequest) (domain.Outcome[domain.StartResult], error)
	StopSession(ctx context.Context, key domain.SessionKey) (domain.Outcome[domain.StopResult], error)
	StopAll(ctx context.Context) (domain.Outcome[domain.StopAllResult], error)
	CollectOutput(ctx context.Context, key domain.SessionKey) (domain.Outcome[domain.CollectResult], error)

	// Available checks whether the API answers at all.
	Available(ctx context.Context) bool
}

type httpClient struct {
	cfg      Config
	http     *http.Client
	observer Observer
}

// NewClient creates a Client for the API at cfg.BaseURL.
func NewClient(cfg Config, observer Observer) Client {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &httpClient{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		observer: observer,
	}
}

func (c *httpClient) ListSessions(ctx context.Context) ([]domain.MiningSession, error) {
	data, _, err := c.call(ctx, http.MethodGet, "/mining/sessions/", "/mining/sessions/", nil)
	if err != nil {
		return nil, err
	}
	return decodeList[domain.MiningSession](data)
}

func (c *httpClient) GetSummary(ctx context.Context) (*domain.MiningSummary, error) {
	data, _, err := c.call(ctx, http.MethodGet, "/mining/summary/", "/mining/summary/", nil)
	if err != nil {
		return nil, err
	}
	if isNull(data) {
		return nil, nil
	}
	var s domain.MiningSummary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: summary: %v", ErrInvalidResponse, err)
	}
	return &s, nil
}

func (c *httpClient) ListLands(ctx context.Context) ([]domain.Land, error) {
	data, _, err := c.call(ctx, http.MethodGet, "/lands/mine/", "/lands/mine/", nil)
	if err != nil {
		return nil, err
	}
	return decodeList[domain.Land](data)
}

func (c *httpClient) ListTools(ctx context.Context) ([]domain.Tool, error) {
	data, _, err := c.call(ctx, http.MethodGet, "/tools/", "/tools/", nil)
	if err != nil {
		return nil, err
	}
	return decodeList[domain.Tool](data)
}

func (c *httpClient) RateHistory(ctx context.Context, hours int) ([]domain.RatePoint, error) {
	path := "/mining/yld-rate-history/"
	if hours > 0 {
		path += "?" + url.Values{"hours": {strconv.Itoa(hours)}}.Encode()
	}
	data, _, err := c.call(ctx, http.MethodGet, "/mining/yld-rate-history/", path, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[domain.RatePoint](data)
}

func (c *httpClient) StartMining(ctx context.Context, req StartRequest) (domain.Outcome[domain.StartResult], error) {
	data, msg, err := c.call(ctx, http.MethodPost, "/mining/start/", "/mining/start/", req)
	if err != nil {
		return domain.Outcome[domain.StartResult]{}, err
	}
	return decodeOutcome[domain.StartResult](data, msg)
}

func (c *httpClient) StopSession(ctx context.Context, key domain.SessionKey) (domain.Outcome[domain.StopResult], error) {
	path := "/mining/sessions/" + key.String() + "/stop/"
	data, msg, err := c.call(ctx, http.MethodPost, "/mining/sessions/{id}/stop/", path, nil)
	if err != nil {
		return domain.Outcome[domain.StopResult]{}, err
	}
	return decodeOutcome[domain.StopResult](data, msg)
}

func (c *httpClient) StopAll(ctx context.Context) (domain.Outcome[domain.StopAllResult], error) {
	data, msg, err := c.call(ctx, http.MethodPost, "/mining/stop-all/", "/mining/stop-all/", nil)
	if err != nil {
		return domain.Outcome[domain.StopAllResult]{}, err
	}
	return decodeOutcome[domain.StopAllResult](data, msg)
}

func (c *httpClient) CollectOutput(ctx context.Context, key domain.SessionKey) (domain.Outcome[domain.CollectResult], error) {
	path := "/mining/sessions/" + key.String() + "/collect/"
	data, msg, err := c.call(ctx, http.MethodPost, "/mining/sessions/{id}/collect/", path, nil)
	if err != nil {
		return domain.Outcome[domain.CollectResult]{}, err
	}
	return decodeOutcome[domain.CollectResult](data, msg)
}

func (c *httpClient) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+apiPrefix+"/mining/summary/", nil)
	if err != nil {
		return false
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < http.StatusInternalServerError
}

// call sends one logical request. Reads are retried on connection errors and
// 5xx responses; writes are attempted exactly once.
func (c *httpClient) call(ctx context.Context, method, endpoint, path string, body any) (json.RawMessage, string, error) {
	start := time.Now()
	requestID := logger.GenerateRequestID()

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, "", fmt.Errorf("marshaling request: %w", err)
		}
	}

	attempts := 1
	if method == http.MethodGet {
		attempts += max(c.cfg.MaxRetries, 0)
	}

	var (
		lastErr    error
		lastStatus int
		tried      int
	)
	for tried < attempts {
		tried++
		status, data, msg, err := c.do(ctx, method, path, payload, requestID)
		lastStatus = status
		if err == nil {
			c.observer.OnCallComplete(CallEvent{
				Method:    method,
				Endpoint:  endpoint,
				RequestID: requestID,
				Status:    status,
				Attempts:  tried,
				LatencyMs: time.Since(start).Milliseconds(),
				Success:   true,
			})
			return data, msg, nil
		}
		lastErr = err

		if ctx.Err() != nil || !retryable(err) || tried == attempts {
			break
		}
		if !c.backoff(ctx, tried) {
			break
		}
	}

	err := c.classify(ctx, lastErr, tried)
	c.observer.OnCallComplete(CallEvent{
		Method:    method,
		Endpoint:  endpoint,
		RequestID: requestID,
		Status:    lastStatus,
		Attempts:  tried,
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   false,
		ErrorCode: errorCode(err),
	})
	return nil, "", err
}

// backoff waits before retry number n and reports false when ctx ends first.
func (c *httpClient) backoff(ctx context.Context, n int) bool {
	step := c.cfg.RetryBackoff
	if step <= 0 {
		step = defaultRetryBackoff
	}
	t := time.NewTimer(step * time.Duration(n))
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (c *httpClient) classify(ctx context.Context, err error, tried int) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ctxErr
	}
	if isConnectionError(err) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if tried > 1 {
		return fmt.Errorf("%w: %w", ErrRetryExhausted, err)
	}
	return err
}

func (c *httpClient) do(ctx context.Context, method, path string, payload []byte, requestID string) (int, json.RawMessage, string, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+apiPrefix+path, body)
	if err != nil {
		return 0, nil, "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", requestID)
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, "", fmt.Errorf("reading response: %w", err)
	}

	data, msg, success, decodeErr := decodeEnvelope(raw)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, nil, msg, &Error{Status: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return resp.StatusCode, nil, "", decodeErr
	}
	if !success {
		return resp.StatusCode, nil, msg, &Error{Status: resp.StatusCode, Message: msg}
	}
	return resp.StatusCode, data, msg, nil
}

func (c *httpClient) authorize(req *http.Request) {
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}
}

func retryable(err error) bool {
	if isConnectionError(err) {
		return true
	}
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status >= http.StatusInternalServerError
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	return errors.As(err, &netErr)
}
