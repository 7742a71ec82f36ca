package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/poofware/intake-service/internal/dtos"
	"github.com/poofware/intake-service/internal/gateway"
)

// fakeGateway answers from canned results and records every call.
type fakeGateway struct {
	mu sync.Mutex

	load   gateway.Result[dtos.PageLoadResponse]
	verify gateway.Result[dtos.KeyVerificationResponse]
	keys   gateway.Result[json.RawMessage]
	users  gateway.Result[json.RawMessage]

	// block, when set, holds VerifyKeys until closed.
	block chan struct{}
	// entered is signalled once VerifyKeys has been called.
	entered chan struct{}

	loadCalls    []string
	verifyCalls  [][2]string
	keyPayloads  []dtos.KeyFormSubmission
	userPayloads []dtos.InvitationSubmission
}

func okResult[T any](v T) gateway.Result[T] {
	return gateway.Result[T]{Value: v, Outcome: gateway.OutcomeOK, StatusCode: 200}
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		keys:  okResult(json.RawMessage(`{}`)),
		users: okResult(json.RawMessage(`{}`)),
	}
}

func (f *fakeGateway) LoadSession(_ context.Context, token string, n gateway.Notifier) gateway.Result[dtos.PageLoadResponse] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loadCalls = append(f.loadCalls, token)
	if !f.load.OK() && n != nil {
		n.Notify(gateway.LevelError, "Failed to load form data. Please refresh and try again.")
	}
	return f.load
}

func (f *fakeGateway) VerifyKeys(_ context.Context, a, b string, n gateway.Notifier) gateway.Result[dtos.KeyVerificationResponse] {
	f.mu.Lock()
	f.verifyCalls = append(f.verifyCalls, [2]string{a, b})
	block, entered := f.block, f.entered
	res := f.verify
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		<-block
	}
	if !res.OK() {
		res.Value = dtos.FailedVerification()
		if n != nil {
			n.Notify(gateway.LevelError, "API key verification timed out. The server might be busy. Please try again.")
		}
	}
	return res
}

func (f *fakeGateway) SubmitKeyForm(_ context.Context, p dtos.KeyFormSubmission, n gateway.Notifier) gateway.Result[json.RawMessage] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keyPayloads = append(f.keyPayloads, p)
	if f.keys.OK() && p.Answers.APIKeysPassed && n != nil {
		n.Notify(gateway.LevelSuccess, gateway.MsgKeyFormSubmitted)
	}
	return f.keys
}

func (f *fakeGateway) SubmitInvitations(_ context.Context, p dtos.InvitationSubmission, n gateway.Notifier) gateway.Result[json.RawMessage] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userPayloads = append(f.userPayloads, p)
	if n != nil {
		if f.users.OK() {
			n.Notify(gateway.LevelSuccess, gateway.MsgUsersInvited)
		} else {
			n.Notify(gateway.LevelError, "Failed to invite users. Please try again.")
		}
	}
	return f.users
}
