// intake-service/internal/dtos/webhook_dtos.go
package dtos

import (
	"github.com/poofware/intake-service/internal/branding"
	"github.com/poofware/intake-service/internal/models"
	"github.com/poofware/intake-service/internal/utils"
)

// -----------------------------------------------------------------------------
// POST {webhook}/pageload
// -----------------------------------------------------------------------------

type PageLoadRequest struct {
	FormToken string `json:"formToken"`
}

// PageLoadResponse is empty (IsEmpty) when the token is unknown or the
// call failed.
type PageLoadResponse struct {
	Name           *string            `json:"name,omitempty"`
	AvailableUsers *int               `json:"availableUsers,omitempty"`
	ActiveUsers    *int               `json:"activeUsers,omitempty"`
	Emails         models.InviteeList `json:"emails,omitempty"`
	PaymentEmail   *string            `json:"paymentemail,omitempty"`
	Submitted      *bool              `json:"submitted,omitempty"`
	Branding       *branding.Theme    `json:"branding,omitempty"`
}

func (r PageLoadResponse) IsEmpty() bool {
	return r.Name == nil &&
		r.AvailableUsers == nil &&
		r.ActiveUsers == nil &&
		r.Emails == nil &&
		r.PaymentEmail == nil &&
		r.Submitted == nil &&
		r.Branding == nil
}

// Session converts a non-empty response into the local session state.
func (r PageLoadResponse) Session(token string) *models.FormSession {
	s := &models.FormSession{
		Token:              token,
		Name:               utils.Val(r.Name),
		AvailableUserSlots: max(utils.Val(r.AvailableUsers), 0),
		ActiveUsers:        max(utils.Val(r.ActiveUsers), 0),
		ExistingInvitees:   append(models.InviteeList{}, r.Emails...),
		PaymentEmail:       utils.Val(r.PaymentEmail),
		Submitted:          utils.Val(r.Submitted),
	}
	return s
}

// -----------------------------------------------------------------------------
// POST {webhook}/keyveriffy
// -----------------------------------------------------------------------------

type KeyVerificationRequest struct {
	OpenRouterAPIKey string `json:"openRouterApiKey"`
	FluxAPIKey       string `json:"fluxApiKey"`
}

type KeyVerificationResponse struct {
	OpenRouterPass models.KeyStatus `json:"openRouterPass"`
	FluxPass       models.KeyStatus `json:"fluxPass"`
}

// FailedVerification is returned whenever the verification call fails.
func FailedVerification() KeyVerificationResponse {
	return KeyVerificationResponse{OpenRouterPass: models.KeyStatusFail, FluxPass: models.KeyStatusFail}
}

// Result normalizes the verdicts; anything but "pass" is a failure.
func (r KeyVerificationResponse) Result() models.KeyVerificationResult {
	out := models.KeyVerificationResult{OpenRouter: models.KeyStatusFail, Flux: models.KeyStatusFail}
	if r.OpenRouterPass == models.KeyStatusPass {
		out.OpenRouter = models.KeyStatusPass
	}
	if r.FluxPass == models.KeyStatusPass {
		out.Flux = models.KeyStatusPass
	}
	return out
}

// -----------------------------------------------------------------------------
// POST {webhook}/submitanswers
// -----------------------------------------------------------------------------

type KeyFormAnswers struct {
	CompanyName        string `json:"company_name"`
	FirstName          string `json:"firstName"`
	OpenRouterAPIKey   string `json:"openRouterApiKey"`
	FluxAPIKey         string `json:"fluxApiKey"`
	APIKeysPassed      bool   `json:"apikeyspassed"`
	SlackEmailIsFine   bool   `json:"slackEmailIsFine"`
	FormToken          string `json:"formToken"`
	PreferredSlackMail string `json:"prefered_email_addressSlack"`
}

type KeyFormSubmission struct {
	Answers KeyFormAnswers `json:"answers"`
}

// -----------------------------------------------------------------------------
// POST {webhook}/submitusers
// -----------------------------------------------------------------------------

type InvitationSubmission struct {
	FormToken string           `json:"formToken"`
	Users     []models.Invitee `json:"users"`
}
