package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poofware/intake-service/internal/dtos"
	"github.com/poofware/intake-service/internal/models"
)

type recordedNotice struct {
	Level   Level
	Message string
}

type noticeRecorder struct {
	mu      sync.Mutex
	notices []recordedNotice
}

func (r *noticeRecorder) Notify(level Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, recordedNotice{level, message})
}

func (r *noticeRecorder) all() []recordedNotice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedNotice(nil), r.notices...)
}

func newBackend(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoadSessionSendsTokenAndHeaders(t *testing.T) {
	var gotBody map[string]string
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, PathPageLoad, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		_, _ = io.WriteString(w, `{"name":"Jane","availableUsers":2,"activeUsers":1,"emails":"a@x.com","paymentemail":"pay@x.com","submitted":false}`)
	})

	rec := &noticeRecorder{}
	c := NewClient(srv.URL+"/", time.Second, nil)
	res := c.LoadSession(context.Background(), "abc123456", rec)

	require.True(t, res.OK())
	assert.Equal(t, "abc123456", gotBody["formToken"])
	assert.False(t, res.Value.IsEmpty())
	assert.Equal(t, "Jane", *res.Value.Name)
	assert.Equal(t, 2, *res.Value.AvailableUsers)
	assert.Equal(t, models.InviteeList{{Name: "a", Email: "a@x.com"}}, res.Value.Emails)
	assert.Empty(t, rec.all())
}

func TestLoadSessionEmptyTokenSkipsNetwork(t *testing.T) {
	var calls int32
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	rec := &noticeRecorder{}
	res := NewClient(srv.URL, time.Second, nil).LoadSession(context.Background(), "", rec)

	assert.Equal(t, OutcomeSkipped, res.Outcome)
	assert.True(t, res.Value.IsEmpty())
	assert.Zero(t, atomic.LoadInt32(&calls))
	assert.Empty(t, rec.all())
}

func TestLoadSessionHTTPErrorFallsBack(t *testing.T) {
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"name":"should be ignored"}`)
	})

	rec := &noticeRecorder{}
	res := NewClient(srv.URL, time.Second, nil).LoadSession(context.Background(), "abc123456", rec)

	assert.Equal(t, OutcomeHTTPError, res.Outcome)
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	assert.True(t, res.Value.IsEmpty())
	assert.Equal(t, []recordedNotice{{LevelError, opLoad.failedMsg}}, rec.all())
}

func TestLoadSessionBadJSONFallsBack(t *testing.T) {
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<html>nope</html>`)
	})

	res := NewClient(srv.URL, time.Second, nil).LoadSession(context.Background(), "abc123456", nil)

	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Error(t, res.Err)
	assert.True(t, res.Value.IsEmpty())
}

func TestVerifyKeysTimeoutFallsBack(t *testing.T) {
	release := make(chan struct{})
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = io.WriteString(w, `{"openRouterPass":"pass","fluxPass":"pass"}`)
	})
	defer close(release)

	rec := &noticeRecorder{}
	c := NewClient(srv.URL, 20*time.Millisecond, nil)

	start := time.Now()
	res := c.VerifyKeys(context.Background(), "sk-or-1", "bfl-1", rec)

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, OutcomeTimedOut, res.Outcome)
	assert.Equal(t, dtos.FailedVerification(), res.Value)
	assert.Equal(t, []recordedNotice{{LevelError, opVerify.timeoutMsg}}, rec.all())
}

func TestVerifyKeysPass(t *testing.T) {
	var got dtos.KeyVerificationRequest
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathKeyVerify, r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"openRouterPass":"pass","fluxPass":"fail"}`)
	})

	res := NewClient(srv.URL, time.Second, nil).VerifyKeys(context.Background(), "sk-or-1", "bfl-1", nil)

	require.True(t, res.OK())
	assert.Equal(t, dtos.KeyVerificationRequest{OpenRouterAPIKey: "sk-or-1", FluxAPIKey: "bfl-1"}, got)
	assert.Equal(t, models.KeyVerificationResult{OpenRouter: models.KeyStatusPass, Flux: models.KeyStatusFail}, res.Value.Result())
}

func TestSubmitKeyFormNotices(t *testing.T) {
	var got dtos.KeyFormSubmission
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathSubmitAnswers, r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"ok":true}`)
	})
	c := NewClient(srv.URL, time.Second, nil)

	failed := &noticeRecorder{}
	res := c.SubmitKeyForm(context.Background(), dtos.KeyFormSubmission{Answers: dtos.KeyFormAnswers{FormToken: "tok", APIKeysPassed: false}}, failed)
	require.True(t, res.OK())
	assert.Empty(t, failed.all())
	assert.Equal(t, "tok", got.Answers.FormToken)

	passed := &noticeRecorder{}
	res = c.SubmitKeyForm(context.Background(), dtos.KeyFormSubmission{Answers: dtos.KeyFormAnswers{FormToken: "tok", APIKeysPassed: true}}, passed)
	require.True(t, res.OK())
	assert.Equal(t, []recordedNotice{{LevelSuccess, MsgKeyFormSubmitted}}, passed.all())
	assert.True(t, got.Answers.APIKeysPassed)
}

func TestSubmitKeyFormWireFormat(t *testing.T) {
	var raw map[string]map[string]any
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_, _ = io.WriteString(w, `{}`)
	})

	NewClient(srv.URL, time.Second, nil).SubmitKeyForm(context.Background(), dtos.KeyFormSubmission{
		Answers: dtos.KeyFormAnswers{
			CompanyName:        "Acme",
			FirstName:          "Jane",
			OpenRouterAPIKey:   "sk-or-1",
			FluxAPIKey:         "bfl-1",
			APIKeysPassed:      true,
			SlackEmailIsFine:   true,
			FormToken:          "tok",
			PreferredSlackMail: "p@x.com",
		},
	}, nil)

	answers := raw["answers"]
	require.NotNil(t, answers)
	for _, key := range []string{
		"company_name", "firstName", "openRouterApiKey", "fluxApiKey",
		"apikeyspassed", "slackEmailIsFine", "formToken", "prefered_email_addressSlack",
	} {
		assert.Contains(t, answers, key)
	}
	assert.Equal(t, "p@x.com", answers["prefered_email_addressSlack"])
}

func TestSubmitInvitations(t *testing.T) {
	var got dtos.InvitationSubmission
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathSubmitUsers, r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `[]`)
	})

	rec := &noticeRecorder{}
	res := NewClient(srv.URL, time.Second, nil).SubmitInvitations(context.Background(), dtos.InvitationSubmission{
		FormToken: "tok",
		Users:     []models.Invitee{{Name: "Ann", Email: "ann@x.com"}},
	}, rec)

	require.True(t, res.OK())
	assert.Equal(t, "tok", got.FormToken)
	assert.Len(t, got.Users, 1)
	assert.Equal(t, []recordedNotice{{LevelSuccess, MsgUsersInvited}}, rec.all())
}

func TestSubmitInvitationsEmptyBodyFails(t *testing.T) {
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	rec := &noticeRecorder{}
	res := NewClient(srv.URL, time.Second, nil).SubmitInvitations(context.Background(), dtos.InvitationSubmission{FormToken: "tok"}, rec)

	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Equal(t, []recordedNotice{{LevelError, opSubmitUsers.failedMsg}}, rec.all())
}

func TestCancelledCallerDoesNotPanic(t *testing.T) {
	release := make(chan struct{})
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := NewClient(srv.URL, time.Second, nil).SubmitInvitations(ctx, dtos.InvitationSubmission{FormToken: "tok"}, nil)
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.ErrorIs(t, res.Err, context.Canceled)
}

func TestUnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	rec := &noticeRecorder{}
	res := NewClient(url, time.Second, nil).VerifyKeys(context.Background(), "a", "b", rec)

	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Equal(t, dtos.FailedVerification(), res.Value)
	assert.Equal(t, []recordedNotice{{LevelError, opVerify.failedMsg}}, rec.all())
}
