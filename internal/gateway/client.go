package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/poofware/intake-service/internal/dtos"
	"github.com/poofware/intake-service/internal/utils"
)

// Webhook paths, relative to the configured base URL.
const (
	PathPageLoad      = "/pageload"
	PathKeyVerify     = "/keyveriffy"
	PathSubmitAnswers = "/submitanswers"
	PathSubmitUsers   = "/submitusers"
)

// abandonFactor bounds how long a request that lost the timeout race may
// keep running in the background.
const abandonFactor = 4

// maxResponseBytes caps how much of a webhook response is read.
const maxResponseBytes = 1 << 20

var (
	webhookCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_webhook_calls_total",
			Help: "Webhook calls by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)
	webhookCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "intake_webhook_call_duration_seconds",
			Help:    "Time until a webhook call settled, timeouts included.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

func init() {
	prometheus.MustRegister(webhookCallsTotal)
	prometheus.MustRegister(webhookCallDuration)
}

// operation describes one webhook endpoint and its user-facing messages.
type operation struct {
	name       string
	path       string
	timeoutMsg string
	failedMsg  string
}

var (
	opLoad = operation{
		name:       "pageload",
		path:       PathPageLoad,
		timeoutMsg: "API request timed out. The server might be busy. Please try again.",
		failedMsg:  "Failed to load form data. Please refresh and try again.",
	}
	opVerify = operation{
		name:       "keyveriffy",
		path:       PathKeyVerify,
		timeoutMsg: "API key verification timed out. The server might be busy. Please try again.",
		failedMsg:  "Failed to verify API keys. Please try again.",
	}
	opSubmitKeys = operation{
		name:       "submitanswers",
		path:       PathSubmitAnswers,
		timeoutMsg: "Form submission timed out. The server might be busy. Please try again.",
		failedMsg:  "Failed to submit form. Please try again.",
	}
	opSubmitUsers = operation{
		name:       "submitusers",
		path:       PathSubmitUsers,
		timeoutMsg: "User invitation submission timed out. The server might be busy. Please try again.",
		failedMsg:  "Failed to invite users. Please try again.",
	}
)

const (
	MsgKeyFormSubmitted = "Form submitted successfully!"
	MsgUsersInvited     = "Users invited successfully!"
)

// Client talks to the webhook backend. It is stateless and safe for
// concurrent use.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient builds a Client. A nil httpClient gets a default one whose own
// timeout reaps requests that lost the race.
func NewClient(baseURL string, timeout time.Duration, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout * abandonFactor}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		httpClient: httpClient,
	}
}

func (c *Client) BaseURL() string        { return c.baseURL }
func (c *Client) Timeout() time.Duration { return c.timeout }

// LoadSession fetches the pre-fill state for token. An empty token
// returns an empty response without any request.
func (c *Client) LoadSession(ctx context.Context, token string, n Notifier) Result[dtos.PageLoadResponse] {
	if token == "" {
		utils.Logger.Warn("LoadSession called with empty token")
		return Result[dtos.PageLoadResponse]{Outcome: OutcomeSkipped}
	}

	res := post[dtos.PageLoadResponse](ctx, c, opLoad, dtos.PageLoadRequest{FormToken: token})
	if !res.OK() {
		res.Value = dtos.PageLoadResponse{}
		notifyFailure(n, opLoad, res.Outcome)
	}
	return res
}

// VerifyKeys asks the backend to check both API keys. Any failure yields
// fail/fail.
func (c *Client) VerifyKeys(ctx context.Context, openRouterKey, fluxKey string, n Notifier) Result[dtos.KeyVerificationResponse] {
	res := post[dtos.KeyVerificationResponse](ctx, c, opVerify, dtos.KeyVerificationRequest{
		OpenRouterAPIKey: openRouterKey,
		FluxAPIKey:       fluxKey,
	})
	if !res.OK() {
		res.Value = dtos.FailedVerification()
		notifyFailure(n, opVerify, res.Outcome)
	}
	return res
}

// SubmitKeyForm records a key-stage attempt, passed or not.
func (c *Client) SubmitKeyForm(ctx context.Context, payload dtos.KeyFormSubmission, n Notifier) Result[json.RawMessage] {
	res := post[json.RawMessage](ctx, c, opSubmitKeys, payload)
	switch {
	case !res.OK():
		notifyFailure(n, opSubmitKeys, res.Outcome)
	case payload.Answers.APIKeysPassed:
		notify(n, LevelSuccess, MsgKeyFormSubmitted)
	}
	return res
}

// SubmitInvitations sends the invitees of one round.
func (c *Client) SubmitInvitations(ctx context.Context, payload dtos.InvitationSubmission, n Notifier) Result[json.RawMessage] {
	res := post[json.RawMessage](ctx, c, opSubmitUsers, payload)
	if res.OK() {
		notify(n, LevelSuccess, MsgUsersInvited)
	} else {
		notifyFailure(n, opSubmitUsers, res.Outcome)
	}
	return res
}

func notifyFailure(n Notifier, op operation, outcome Outcome) {
	if outcome == OutcomeTimedOut {
		notify(n, LevelError, op.timeoutMsg)
		return
	}
	notify(n, LevelError, op.failedMsg)
}

// post races the request against c.timeout. The request keeps running
// after the timeout wins; its result is dropped on the buffered channel.
func post[T any](ctx context.Context, c *Client, op operation, body any) Result[T] {
	start := time.Now()

	payload, err := json.Marshal(body)
	if err != nil {
		return finish(op, start, Result[T]{Outcome: OutcomeFailed, Err: fmt.Errorf("encode %s body: %w", op.name, err)})
	}

	done := make(chan Result[T], 1)
	go func() {
		done <- send[T](context.WithoutCancel(ctx), c, op, payload)
	}()

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case res := <-done:
		return finish(op, start, res)
	case <-timer.C:
		return finish(op, start, Result[T]{
			Outcome: OutcomeTimedOut,
			Err:     fmt.Errorf("request timed out after %s", c.timeout),
		})
	case <-ctx.Done():
		return finish(op, start, Result[T]{Outcome: OutcomeFailed, Err: ctx.Err()})
	}
}

func send[T any](ctx context.Context, c *Client, op operation, payload []byte) Result[T] {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+op.path, bytes.NewReader(payload))
	if err != nil {
		return Result[T]{Outcome: OutcomeFailed, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result[T]{Outcome: OutcomeFailed, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return Result[T]{
			Outcome:    OutcomeHTTPError,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("API call failed: %d", resp.StatusCode),
		}
	}

	var out T
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty response body")
		}
		return Result[T]{Outcome: OutcomeFailed, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode %s response: %w", op.name, err)}
	}
	return Result[T]{Value: out, Outcome: OutcomeOK, StatusCode: resp.StatusCode}
}

func finish[T any](op operation, start time.Time, res Result[T]) Result[T] {
	webhookCallsTotal.WithLabelValues(op.name, res.Outcome.String()).Inc()
	webhookCallDuration.WithLabelValues(op.name).Observe(time.Since(start).Seconds())

	entry := utils.Logger.WithFields(logrus.Fields{
		"operation": op.name,
		"outcome":   res.Outcome.String(),
		"status":    res.StatusCode,
		"duration":  time.Since(start).String(),
	})
	if res.OK() {
		entry.Debug("webhook call settled")
	} else {
		entry.WithError(res.Err).Error("webhook call failed")
	}
	return res
}
