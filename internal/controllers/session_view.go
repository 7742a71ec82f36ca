package controllers

import (
	"github.com/poofware/intake-service/internal/dtos"
	"github.com/poofware/intake-service/internal/models"
	"github.com/poofware/intake-service/internal/services"
)

// newSessionView maps a controller snapshot and its drained notices to JSON.
func newSessionView(v services.FormView, notices []services.Notice) dtos.SessionViewResponse {
	resp := dtos.SessionViewResponse{
		Stage:          v.Stage.String(),
		Error:          v.Error,
		Token:          v.Token,
		Existing:       []models.Invitee{},
		Drafts:         []models.InviteeDraft{},
		Verification:   v.Verification,
		ShowKeyStage:   v.ShowKeyStage,
		InviteDimmed:   v.InviteDimmed,
		NoSlots:        v.NoSlots,
		CanAddDraft:    v.CanAddDraft,
		CanInvite:      v.CanInvite,
		KeysBusy:       v.KeysBusy,
		InviteBusy:     v.InviteBusy,
		SuccessMessage: v.SuccessMessage,
		Notices:        make([]dtos.NoticeResponse, 0, len(notices)),
		Theme:          v.Theme,
		BrandingLoaded: v.BrandingLoaded,
	}
	for _, n := range notices {
		resp.Notices = append(resp.Notices, dtos.NoticeResponse{Level: string(n.Level), Message: n.Message})
	}
	if !v.HasSession {
		return resp
	}

	resp.Name = v.Session.Name
	resp.PaymentEmail = v.Session.PaymentEmail
	resp.AvailableSlots = v.Session.AvailableUserSlots
	resp.ActiveUsers = v.Session.ActiveUsers
	resp.Existing = append(resp.Existing, v.Session.ExistingInvitees...)
	resp.Drafts = append(resp.Drafts, v.Drafts...)
	return resp
}
