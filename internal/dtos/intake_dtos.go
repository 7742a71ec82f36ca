// intake-service/internal/dtos/intake_dtos.go
package dtos

import (
	"github.com/poofware/intake-service/internal/branding"
	"github.com/poofware/intake-service/internal/models"
)

type HealthCheckResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

// OpenSessionRequest carries either the page URL (query, fragment and path
// are all searched for a token) or the token itself. PageURL may be
// relative; it is parsed by the handler.
type OpenSessionRequest struct {
	PageURL   string `json:"pageUrl" validate:"omitempty,max=2048"`
	FormToken string `json:"formToken" validate:"required_without=PageURL"`
}

type SubmitKeysRequest struct {
	FirstName        string `json:"firstName" validate:"omitempty,max=200"`
	CompanyName      string `json:"companyName" validate:"required,max=200"`
	SlackEmail       string `json:"slackEmail" validate:"omitempty,email"`
	UsePaymentEmail  bool   `json:"usePaymentEmail"`
	OpenRouterAPIKey string `json:"openRouterApiKey" validate:"required"`
	FluxAPIKey       string `json:"fluxApiKey" validate:"required"`
}

type InviteeDraftRequest struct {
	Name  string `json:"name" validate:"max=200"`
	Email string `json:"email" validate:"omitempty,email"`
}

type SubmitInvitationsRequest struct {
	Users []InviteeDraftRequest `json:"users" validate:"required,min=1,dive"`
}

type NoticeResponse struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// SessionViewResponse is the JSON rendering of a form controller snapshot.
type SessionViewResponse struct {
	Stage          string                       `json:"stage"`
	Error          string                       `json:"error,omitempty"`
	Token          string                       `json:"formToken,omitempty"`
	Name           string                       `json:"name,omitempty"`
	PaymentEmail   string                       `json:"paymentEmail,omitempty"`
	AvailableSlots int                          `json:"availableSlots"`
	ActiveUsers    int                          `json:"activeUsers"`
	Existing       []models.Invitee             `json:"existingInvitees"`
	Drafts         []models.InviteeDraft        `json:"drafts"`
	Verification   models.KeyVerificationResult `json:"verification"`
	ShowKeyStage   bool                         `json:"showKeyStage"`
	InviteDimmed   bool                         `json:"inviteDimmed"`
	NoSlots        bool                         `json:"noSlots"`
	CanAddDraft    bool                         `json:"canAddDraft"`
	CanInvite      bool                         `json:"canInvite"`
	KeysBusy       bool                         `json:"keysBusy"`
	InviteBusy     bool                         `json:"inviteBusy"`
	SuccessMessage string                       `json:"successMessage,omitempty"`
	Notices        []NoticeResponse             `json:"notices"`
	Theme          branding.Theme               `json:"theme"`
	BrandingLoaded bool                         `json:"brandingLoaded"`
}

type ValidationErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}
