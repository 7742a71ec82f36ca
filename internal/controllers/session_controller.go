package controllers

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/poofware/intake-service/internal/dtos"
	"github.com/poofware/intake-service/internal/models"
	"github.com/poofware/intake-service/internal/services"
	"github.com/poofware/intake-service/internal/utils"
)

type SessionController struct {
	sessions *services.SessionRegistry
}

func NewSessionController(sessions *services.SessionRegistry) *SessionController {
	return &SessionController{sessions: sessions}
}

// POST /api/v1/sessions
func (c *SessionController) OpenSessionHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.OpenSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if !validateRequest(w, req) {
		return
	}

	token := req.FormToken
	if token == "" {
		u, err := url.Parse(req.PageURL)
		if err != nil {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid page URL", nil, err)
			return
		}
		token = services.ResolveToken(u)
	}

	ctl, err := c.sessions.Open(r.Context(), services.StaticToken(token))
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, newSessionView(ctl.View(), ctl.TakeNotices()))
}

// GET /api/v1/sessions/{token}
func (c *SessionController) GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	ctl, err := c.sessions.Get(mux.Vars(r)["token"])
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, newSessionView(ctl.View(), ctl.TakeNotices()))
}

// POST /api/v1/sessions/{token}/keys
func (c *SessionController) SubmitKeysHandler(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]
	logger := utils.Logger.WithFields(logrus.Fields{
		"handler":    "SubmitKeysHandler",
		"request_id": utils.RequestID(r.Context()),
	})

	ctl, err := c.sessions.Get(token)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.SubmitKeysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if !validateRequest(w, req) {
		return
	}

	result, err := ctl.SubmitKeys(r.Context(), services.KeyStageInput{
		FirstName:        req.FirstName,
		CompanyName:      req.CompanyName,
		SlackEmail:       req.SlackEmail,
		UsePaymentEmail:  req.UsePaymentEmail,
		OpenRouterAPIKey: req.OpenRouterAPIKey,
		FluxAPIKey:       req.FluxAPIKey,
	})
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	logger.WithField("passed", result.Passed()).Debug("Key stage submitted")
	utils.RespondWithJSON(w, http.StatusOK, newSessionView(ctl.View(), ctl.TakeNotices()))
}

// POST /api/v1/sessions/{token}/invitations
func (c *SessionController) SubmitInvitationsHandler(w http.ResponseWriter, r *http.Request) {
	ctl, err := c.sessions.Get(mux.Vars(r)["token"])
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.SubmitInvitationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if !validateRequest(w, req) {
		return
	}

	drafts := make([]models.InviteeDraft, 0, len(req.Users))
	for _, u := range req.Users {
		drafts = append(drafts, models.InviteeDraft{Name: u.Name, Email: u.Email})
	}

	if _, err := ctl.SubmitInvitations(r.Context(), drafts); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, newSessionView(ctl.View(), ctl.TakeNotices()))
}
