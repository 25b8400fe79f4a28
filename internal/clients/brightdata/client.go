package brightdata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/maxaizer/cv-matcher/internal/metrics"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Config struct {
	APIToken        string `validate:"required"`
	DatasetID       string `validate:"required"`
	TriggerURL      string `validate:"required,url"`
	SnapshotURL     string `validate:"required,url"`
	PollInterval    time.Duration
	MaxPollAttempts int `validate:"gte=1"`
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type sleepFunc func(ctx context.Context, d time.Duration) error

type triggerRequest struct {
	URL string `json:"url"`
}

type triggerResponse struct {
	SnapshotID string `json:"snapshot_id"`
}

type Client struct {
	config      Config
	httpClient  HTTPClient
	rateLimiter *rate.Limiter
	sleep       sleepFunc
}

func NewClient(config Config) (*Client, error) {
	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid brightdata config: %w", err)
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		sleep:      sleepContext,
	}, nil
}

func (c *Client) SetHTTPClient(client HTTPClient) {
	c.httpClient = client
}

func (c *Client) SetRateLimit(maxRequestsPerSecond float32) {
	if maxRequestsPerSecond <= 0 {
		c.rateLimiter = nil
		return
	}
	c.rateLimiter = rate.NewLimiter(rate.Limit(maxRequestsPerSecond), 1)
}

// SubmitAndPoll triggers a scrape of the job posting and waits for the snapshot.
// It returns the decoded snapshot body as is.
func (c *Client) SubmitAndPoll(ctx context.Context, jobURL string) (any, error) {

	if err := ValidateJobURL(jobURL); err != nil {
		return nil, err
	}

	snapshotID, err := c.Trigger(ctx, jobURL)
	if err != nil {
		return nil, err
	}
	log.Infof("brightdata snapshot %s created for %s", snapshotID, jobURL)

	return c.Poll(ctx, snapshotID)
}

func (c *Client) Trigger(ctx context.Context, jobURL string) (string, error) {

	payload, err := json.Marshal([]triggerRequest{{URL: jobURL}})
	if err != nil {
		return "", fmt.Errorf("error encoding trigger payload: %v", err)
	}

	params := url.Values{}
	params.Add("dataset_id", c.config.DatasetID)
	params.Add("include_errors", "true")

	status, body, err := c.sendRequest(ctx, http.MethodPost, c.config.TriggerURL+"?"+params.Encode(), payload)
	if err != nil {
		return "", err
	}

	if status < 200 || status >= 300 {
		return "", errors.Wrapf(ErrUpstreamProtocol, "trigger failed with status %v, body: %v", status, string(body))
	}

	var response triggerResponse
	if err = json.Unmarshal(body, &response); err != nil {
		return "", errors.Wrapf(ErrUpstreamProtocol, "error decoding trigger response: %v", err)
	}

	if response.SnapshotID == "" {
		return "", errors.Wrapf(ErrUpstreamProtocol, "trigger response has no snapshot_id: %v", string(body))
	}

	return response.SnapshotID, nil
}

// Poll checks the snapshot status until it is ready, missing, failed or the attempt budget is spent.
func (c *Client) Poll(ctx context.Context, snapshotID string) (any, error) {

	statusURL := strings.TrimRight(c.config.SnapshotURL, "/") + "/" + url.PathEscape(snapshotID) + "?format=json"
	maxAttempts := c.config.MaxPollAttempts

	var result any

	_, err := lo.AttemptWhile(maxAttempts, func(attempt int) (error, bool) {
		var err error
		result, err = c.pollOnce(ctx, statusURL)

		if err == nil {
			metrics.PollAttempts.WithLabelValues("ready").Inc()
			return nil, false
		}

		if !isRetryable(err) {
			metrics.PollAttempts.WithLabelValues("failed").Inc()
			return err, false
		}

		if errors.Is(err, errNotReady) {
			metrics.PollAttempts.WithLabelValues("not_ready").Inc()
			log.Debugf("snapshot %s not ready, attempt %d/%d", snapshotID, attempt+1, maxAttempts)
		} else {
			metrics.PollAttempts.WithLabelValues("transport_error").Inc()
			log.Warnf("snapshot %s poll attempt %d/%d failed: %v", snapshotID, attempt+1, maxAttempts, err)
		}

		if attempt+1 < maxAttempts {
			if sleepErr := c.sleep(ctx, c.config.PollInterval); sleepErr != nil {
				return sleepErr, false
			}
		}
		return err, true
	})

	if err == nil {
		return result, nil
	}

	if isRetryable(err) {
		return nil, errors.Wrapf(ErrPollingTimeout, "snapshot %s after %d attempts", snapshotID, maxAttempts)
	}

	return nil, err
}

func (c *Client) pollOnce(ctx context.Context, statusURL string) (any, error) {

	status, body, err := c.sendRequest(ctx, http.MethodGet, statusURL, nil)
	if err != nil {
		return nil, err
	}

	switch status {
	case http.StatusOK:
		var payload any
		if err = json.Unmarshal(body, &payload); err != nil {
			return nil, errors.Wrapf(ErrUpstreamProtocol, "error decoding snapshot: %v", err)
		}
		return payload, nil
	case http.StatusAccepted:
		return nil, errNotReady
	case http.StatusNotFound:
		return nil, ErrSnapshotNotFound
	default:
		return nil, errors.Wrapf(ErrUpstreamProtocol, "snapshot request failed with status %v, body: %v", status, string(body))
	}
}

func (c *Client) sendRequest(ctx context.Context, method string, requestURL string, payload []byte) (int, []byte, error) {

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return 0, nil, err
		}
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("error creating request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, &transportError{err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &transportError{err: fmt.Errorf("error reading response body: %v", err)}
	}

	return resp.StatusCode, body, nil
}

type transportError struct {
	err error
}

func (e *transportError) Error() string {
	return "error sending request: " + e.err.Error()
}

func (e *transportError) Unwrap() error {
	return e.err
}

func isRetryable(err error) bool {
	if errors.Is(err, errNotReady) {
		return true
	}
	var transportErr *transportError
	return errors.As(err, &transportErr) && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
