//go:build (dev_test || staging_test) && integration

package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poofware/intake-service/internal/constants"
	"github.com/poofware/intake-service/internal/dtos"
	"github.com/poofware/intake-service/internal/routes"
	"github.com/poofware/intake-service/internal/utils"
)

func doJSON(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, cfg.AppUrl+path, rdr)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestHealth(t *testing.T) {
	resp, body := doJSON(t, http.MethodGet, routes.Health, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var health dtos.HealthCheckResponse
	require.NoError(t, json.Unmarshal(body, &health))
	assert.Equal(t, "OK", health.Status)
}

func TestIndexWithoutTokenShowsError(t *testing.T) {
	resp, body := doJSON(t, http.MethodGet, routes.Index, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html"))
	assert.Contains(t, string(body), constants.MsgNoToken)
}

func TestUnknownTokenIsRejected(t *testing.T) {
	resp, body := doJSON(t, http.MethodPost, routes.Sessions, dtos.OpenSessionRequest{FormToken: "integration-unknown-token"})
	require.Equal(t, http.StatusNotFound, resp.StatusCode, string(body))

	var e utils.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &e))
	assert.Equal(t, utils.ErrCodeInvalidToken, e.Code)
}

func TestOpenLiveSession(t *testing.T) {
	if formToken == "" {
		t.Skip("INTEGRATION_FORM_TOKEN not set")
	}

	resp, body := doJSON(t, http.MethodPost, routes.Sessions, dtos.OpenSessionRequest{
		PageURL: cfg.AppUrl + "/?" + constants.TokenParam + "=" + formToken,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var v dtos.SessionViewResponse
	require.NoError(t, json.Unmarshal(body, &v))
	assert.Equal(t, formToken, v.Token)
	assert.Contains(t, []string{"key_stage", "invite_stage", "complete"}, v.Stage)
	assert.GreaterOrEqual(t, v.AvailableSlots, 0)

	resp, body = doJSON(t, http.MethodGet, "/api/v1/sessions/"+formToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, _ = doJSON(t, http.MethodGet, "/form/"+formToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
