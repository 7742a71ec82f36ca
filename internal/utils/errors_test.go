package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleAppError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{ErrNoToken, http.StatusBadRequest, ErrCodeNoToken},
		{ErrInvalidSession, http.StatusNotFound, ErrCodeInvalidToken},
		{fmt.Errorf("lookup: %w", ErrSessionNotFound), http.StatusNotFound, ErrCodeNotFound},
		{ErrStageBusy, http.StatusConflict, ErrCodeConflict},
		{ErrWrongStage, http.StatusConflict, ErrCodeWrongStage},
		{ErrNoInvitees, http.StatusBadRequest, ErrCodeValidation},
		{ErrNoSlots, http.StatusBadRequest, ErrCodeValidation},
		{ErrFirstDraftRequired, http.StatusBadRequest, ErrCodeValidation},
		{ErrTooManyInvitees, http.StatusBadRequest, ErrCodeValidation},
		{ErrRateLimitExceeded, http.StatusTooManyRequests, ErrCodeRateLimitExceeded},
		{&AppError{StatusCode: http.StatusBadGateway, Code: ErrCodeExternalServiceFailure, Message: "upstream"}, http.StatusBadGateway, ErrCodeExternalServiceFailure},
		{errors.New("mystery"), http.StatusInternalServerError, ErrCodeInternal},
	}

	for _, tc := range cases {
		t.Run(tc.code+"_"+tc.err.Error(), func(t *testing.T) {
			rr := httptest.NewRecorder()
			HandleAppError(rr, tc.err)

			require.Equal(t, tc.status, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tc.code, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	err := &AppError{Message: "wrapped", Err: ErrStageBusy}
	assert.ErrorIs(t, err, ErrStageBusy)
	assert.Equal(t, ErrStageBusy.Error(), err.Error())
	assert.Equal(t, "plain", (&AppError{Message: "plain"}).Error())
}

func TestPtrVal(t *testing.T) {
	assert.Equal(t, 3, *Ptr(3))
	assert.Equal(t, "", Val[string](nil))
	assert.Equal(t, "x", Val(Ptr("x")))
}
