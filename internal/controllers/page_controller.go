package controllers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/poofware/intake-service/internal/constants"
	"github.com/poofware/intake-service/internal/gateway"
	"github.com/poofware/intake-service/internal/models"
	"github.com/poofware/intake-service/internal/services"
	"github.com/poofware/intake-service/internal/utils"
	"github.com/poofware/intake-service/internal/views"
)

// maxFormDrafts bounds how many name-N/email-N pairs are read from a post.
const maxFormDrafts = 100

// PageController serves the server-rendered form. Every submit answers
// with a 303 back to the form page; notices are shown on the next render.
type PageController struct {
	sessions *services.SessionRegistry
}

func NewPageController(sessions *services.SessionRegistry) *PageController {
	return &PageController{sessions: sessions}
}

func formPath(token string) string {
	return "/form/" + url.PathEscape(token)
}

// GET /
func (c *PageController) IndexHandler(w http.ResponseWriter, r *http.Request) {
	if token := services.ResolveToken(r.URL); token != "" {
		http.Redirect(w, r, formPath(token), http.StatusSeeOther)
		return
	}
	views.Render(w, http.StatusBadRequest, views.ErrorPage(c.sessions.Fallback(), constants.MsgNoToken))
}

// GET /form/{token}
func (c *PageController) FormHandler(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	ctl, err := c.sessions.GetOrOpen(r.Context(), token)
	status := http.StatusOK
	switch {
	case errors.Is(err, utils.ErrNoToken):
		status = http.StatusBadRequest
	case errors.Is(err, utils.ErrInvalidSession):
		status = http.StatusNotFound
	case err != nil:
		status = http.StatusInternalServerError
	}
	if ctl == nil {
		views.Render(w, status, views.ErrorPage(c.sessions.Fallback(), constants.MsgInvalidSession))
		return
	}

	path := formPath(token)
	views.Render(w, status, views.NewPage(ctl.View(), ctl.TakeNotices(), path+"/keys", path+"/invitations"))
}

// POST /form/{token}/keys
func (c *PageController) KeysHandler(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]
	ctl, ok := c.lookup(w, r, token)
	if !ok {
		return
	}

	in := services.KeyStageInput{
		FirstName:        r.PostFormValue("firstName"),
		CompanyName:      r.PostFormValue("companyName"),
		SlackEmail:       r.PostFormValue("slackEmail"),
		UsePaymentEmail:  formBool(r.PostFormValue("usePaymentEmail")),
		OpenRouterAPIKey: strings.TrimSpace(r.PostFormValue("openRouterApiKey")),
		FluxAPIKey:       strings.TrimSpace(r.PostFormValue("fluxApiKey")),
	}
	if _, err := ctl.SubmitKeys(r.Context(), in); err != nil {
		ctl.Notify(gateway.LevelError, noticeFor(err))
	}

	fragment := "#keys"
	if ctl.Stage() != services.StageKeys {
		fragment = "#invite"
	}
	http.Redirect(w, r, formPath(token)+fragment, http.StatusSeeOther)
}

// POST /form/{token}/invitations
func (c *PageController) InvitationsHandler(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]
	ctl, ok := c.lookup(w, r, token)
	if !ok {
		return
	}

	drafts := parseDrafts(r)
	action := r.PostFormValue("action")

	var err error
	switch {
	case action == "add":
		ctl.ReplaceDrafts(drafts)
		err = ctl.AddDraft()
	case strings.HasPrefix(action, "remove:"):
		ctl.ReplaceDrafts(drafts)
		i, convErr := strconv.Atoi(strings.TrimPrefix(action, "remove:"))
		if convErr != nil {
			err = utils.ErrDraftIndex
		} else {
			err = ctl.RemoveDraft(i)
		}
	default:
		_, err = ctl.SubmitInvitations(r.Context(), drafts)
	}
	if err != nil {
		ctl.Notify(gateway.LevelError, noticeFor(err))
	}
	http.Redirect(w, r, formPath(token)+"#invite", http.StatusSeeOther)
}

// lookup parses the posted form and finds the session. An unknown or
// expired session is sent back to the form page, which reloads it.
func (c *PageController) lookup(w http.ResponseWriter, r *http.Request, token string) (*services.FormController, bool) {
	if err := r.ParseForm(); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid form payload", nil, err)
		return nil, false
	}
	ctl, err := c.sessions.Get(token)
	if err != nil {
		utils.Logger.WithError(err).Debug("Form post for unknown session; redirecting to reload")
		http.Redirect(w, r, formPath(token), http.StatusSeeOther)
		return nil, false
	}
	return ctl, true
}

// parseDrafts reads consecutive name-N/email-N pairs starting at 0.
func parseDrafts(r *http.Request) []models.InviteeDraft {
	var drafts []models.InviteeDraft
	for i := 0; i < maxFormDrafts; i++ {
		n := strconv.Itoa(i)
		_, hasName := r.PostForm["name-"+n]
		_, hasEmail := r.PostForm["email-"+n]
		if !hasName && !hasEmail {
			break
		}
		drafts = append(drafts, models.InviteeDraft{
			Name:  r.PostForm.Get("name-" + n),
			Email: r.PostForm.Get("email-" + n),
		})
	}
	if drafts == nil {
		drafts = []models.InviteeDraft{}
	}
	return drafts
}

func formBool(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b || v == "on"
}

func noticeFor(err error) string {
	switch {
	case errors.Is(err, utils.ErrNoInvitees):
		return constants.MsgNoInvitees
	case errors.Is(err, utils.ErrNoSlots):
		return constants.MsgNoSlots
	case errors.Is(err, utils.ErrFirstDraftRequired):
		return constants.MsgFirstUser
	case errors.Is(err, utils.ErrTooManyInvitees):
		return constants.MsgTooMany
	case errors.Is(err, utils.ErrStageBusy):
		return constants.MsgStageBusy
	case errors.Is(err, utils.ErrWrongStage), errors.Is(err, utils.ErrDraftIndex):
		return constants.MsgWrongStage
	default:
		return "Something went wrong. Please try again."
	}
}
