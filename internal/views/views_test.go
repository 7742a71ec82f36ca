package views

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poofware/intake-service/internal/branding"
	"github.com/poofware/intake-service/internal/gateway"
	"github.com/poofware/intake-service/internal/models"
	"github.com/poofware/intake-service/internal/services"
)

func sessionView() services.FormView {
	store := branding.NewStore(branding.DefaultTheme(branding.Company{Name: "Acme", SupportEmail: "ops@acme.test"}))
	return services.FormView{
		Stage:      services.StageKeys,
		Token:      "tok123456789",
		HasSession: true,
		Session: models.FormSession{
			Name:               "<b>Ada</b>",
			AvailableUserSlots: 2,
			ActiveUsers:        3,
			PaymentEmail:       "pay@acme.test",
		},
		Drafts:       make([]models.InviteeDraft, 2),
		Verification: models.KeyVerificationResult{OpenRouter: models.KeyStatusFail, Flux: models.KeyStatusPass},
		FailedKeys:   []string{"The OpenRouter API key is invalid"},
		ShowKeyStage: true,
		InviteDimmed: true,
		Theme:        store.Current(),
		Presentation: store.Presentation(),
	}
}

func TestRenderKeyStage(t *testing.T) {
	rr := httptest.NewRecorder()
	Render(rr, http.StatusOK, NewPage(sessionView(), []services.Notice{{Level: gateway.LevelError, Message: "Boom"}}, "/form/t/keys", "/form/t/invitations"))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))

	body := rr.Body.String()
	assert.Contains(t, body, "&lt;b&gt;Ada&lt;/b&gt;")
	assert.NotContains(t, body, "<b>Ada</b>")
	assert.Contains(t, body, `action="/form/t/keys"`)
	assert.Contains(t, body, `"pay@acme.test" is fine`)
	assert.Contains(t, body, `class="fail"`)
	assert.Contains(t, body, `class="pass"`)
	assert.Contains(t, body, "The OpenRouter API key is invalid")
	assert.Contains(t, body, `toast-error`)
	assert.Contains(t, body, "Boom")
	assert.Contains(t, body, "card dimmed")
	assert.Contains(t, body, "User 2")
	assert.Contains(t, body, `value="remove:1"`)
	assert.Contains(t, body, "--color-primary-rgb:239, 182, 29")
}

func TestRenderNoSlots(t *testing.T) {
	v := sessionView()
	v.ShowKeyStage = false
	v.InviteDimmed = false
	v.NoSlots = true
	v.Session.AvailableUserSlots = 0

	rr := httptest.NewRecorder()
	Render(rr, http.StatusOK, NewPage(v, nil, "", ""))

	body := rr.Body.String()
	assert.Contains(t, body, "No User Slots Available")
	assert.Contains(t, body, "mailto:ops@acme.test")
	assert.NotContains(t, body, "API Keys Submission")
}

func TestRenderErrorPage(t *testing.T) {
	rr := httptest.NewRecorder()
	Render(rr, http.StatusNotFound, ErrorPage(branding.DefaultTheme(branding.Company{}), "Invalid form token or no data received."))

	require.Equal(t, http.StatusNotFound, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Invalid form token or no data received.")
	assert.Contains(t, body, "/placeholder.svg")
	assert.Contains(t, body, "Default Company")
	assert.NotContains(t, body, "Invite Users")
}

func TestRenderPaymentEmailToggle(t *testing.T) {
	rr := httptest.NewRecorder()
	Render(rr, http.StatusOK, NewPage(sessionView(), nil, "/form/t/keys", "/form/t/invitations"))

	body := rr.Body.String()
	assert.Contains(t, body, `name="usePaymentEmail" value="true" checked>`)
	assert.Contains(t, body, `value="pay@acme.test" placeholder="your@email.com" hidden>`)

	v := sessionView()
	v.Session.PaymentEmail = ""
	rr = httptest.NewRecorder()
	Render(rr, http.StatusOK, NewPage(v, nil, "/form/t/keys", "/form/t/invitations"))

	body = rr.Body.String()
	assert.Contains(t, body, "No payment email available")
	assert.NotContains(t, body, `name="usePaymentEmail"`)
	assert.Contains(t, body, `placeholder="your@email.com" required>`)
}

func TestRenderInviteSubmitFollowsCanInvite(t *testing.T) {
	v := sessionView()
	v.ShowKeyStage = false
	v.InviteDimmed = false
	v.Drafts = []models.InviteeDraft{{}}

	rr := httptest.NewRecorder()
	Render(rr, http.StatusOK, NewPage(v, nil, "", "/form/t/invitations"))
	assert.Contains(t, rr.Body.String(), `value="submit" data-busy="false" disabled>`)

	v.Drafts = []models.InviteeDraft{{Name: "Bob", Email: "bob@acme.test"}}
	v.CanInvite = true
	rr = httptest.NewRecorder()
	Render(rr, http.StatusOK, NewPage(v, nil, "", "/form/t/invitations"))
	body := rr.Body.String()
	assert.Contains(t, body, `value="submit" data-busy="false" >`)
	assert.NotContains(t, body, `data-busy="false" disabled`)

	v.CanInvite = false
	v.InviteBusy = true
	rr = httptest.NewRecorder()
	Render(rr, http.StatusOK, NewPage(v, nil, "", "/form/t/invitations"))
	body = rr.Body.String()
	assert.Contains(t, body, `data-busy="true" disabled>`)
	assert.Contains(t, body, "Inviting...")
}
