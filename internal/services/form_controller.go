package services

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/poofware/intake-service/internal/branding"
	"github.com/poofware/intake-service/internal/constants"
	"github.com/poofware/intake-service/internal/dtos"
	"github.com/poofware/intake-service/internal/gateway"
	"github.com/poofware/intake-service/internal/models"
	"github.com/poofware/intake-service/internal/utils"
)

// Stage is the position of a form session in its lifecycle.
type Stage int

const (
	StageLoading Stage = iota
	StageError
	StageAwaitingSession
	StageKeys
	StageInvite
	StageComplete
)

func (s Stage) String() string {
	switch s {
	case StageLoading:
		return "loading"
	case StageError:
		return "error"
	case StageAwaitingSession:
		return "awaiting_session"
	case StageKeys:
		return "key_stage"
	case StageInvite:
		return "invite_stage"
	case StageComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Gateway is the subset of the webhook client the form needs.
type Gateway interface {
	LoadSession(ctx context.Context, token string, n gateway.Notifier) gateway.Result[dtos.PageLoadResponse]
	VerifyKeys(ctx context.Context, openRouterKey, fluxKey string, n gateway.Notifier) gateway.Result[dtos.KeyVerificationResponse]
	SubmitKeyForm(ctx context.Context, payload dtos.KeyFormSubmission, n gateway.Notifier) gateway.Result[json.RawMessage]
	SubmitInvitations(ctx context.Context, payload dtos.InvitationSubmission, n gateway.Notifier) gateway.Result[json.RawMessage]
}

// KeyStageInput is what the user typed into the key stage.
type KeyStageInput struct {
	FirstName        string
	CompanyName      string
	SlackEmail       string
	UsePaymentEmail  bool
	OpenRouterAPIKey string
	FluxAPIKey       string
}

// Notice is a transient user-facing message.
type Notice struct {
	Level   gateway.Level
	Message string
}

// InvitationResult reports one invitation round. Delivered is false when
// the webhook call failed; the drafts are kept for a retry then.
type InvitationResult struct {
	Invited   []models.Invitee
	Delivered bool
}

// FormView is a point-in-time copy of a controller, safe to render.
type FormView struct {
	Stage          Stage
	Error          string
	Token          string
	Session        models.FormSession
	HasSession     bool
	Drafts         []models.InviteeDraft
	Verification   models.KeyVerificationResult
	KeyStageDone   bool
	ShowKeyStage   bool
	InviteDimmed   bool
	NoSlots        bool
	CanAddDraft    bool
	CanInvite      bool
	KeysBusy       bool
	InviteBusy     bool
	FailedKeys     []string
	SuccessMessage string
	Theme          branding.Theme
	Presentation   branding.Presentation
	BrandingLoaded bool
}

// FormController drives one token's form from load to completion. Its
// lock is never held across a webhook call; the busy flags keep a stage
// from being submitted twice concurrently.
type FormController struct {
	gw       Gateway
	theme    *branding.Store
	notifier CompletionNotifier

	mu             sync.Mutex
	stage          Stage
	errMsg         string
	token          string
	session        *models.FormSession
	keyStageDone   bool
	verification   models.KeyVerificationResult
	keysBusy       bool
	inviteBusy     bool
	drafts         []models.InviteeDraft
	notices        []Notice
	successMessage string
	touched        time.Time
}

// NewFormController returns a controller in StageLoading with the fallback
// theme applied. notifier may be nil.
func NewFormController(gw Gateway, fallback branding.Theme, notifier CompletionNotifier) *FormController {
	return &FormController{
		gw:           gw,
		theme:        branding.NewStore(fallback),
		notifier:     notifier,
		stage:        StageLoading,
		verification: models.IdleVerification(),
		touched:      time.Now(),
	}
}

// Theme exposes the session's branding store to readers.
func (c *FormController) Theme() *branding.Store { return c.theme }

// Notify implements gateway.Notifier by queueing the notice for the next view.
func (c *FormController) Notify(level gateway.Level, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notices = append(c.notices, Notice{Level: level, Message: message})
}

// Start resolves the token from src within grace and loads the session.
func (c *FormController) Start(ctx context.Context, src TokenSource, grace time.Duration) error {
	token, err := AwaitToken(ctx, src, grace)
	if err != nil {
		utils.Logger.WithError(err).Warn("No form token resolved")
		c.fail(constants.MsgNoToken)
		return utils.ErrNoToken
	}
	return c.Load(ctx, token)
}

// Load fetches the session for token. An empty backend answer is terminal.
func (c *FormController) Load(ctx context.Context, token string) error {
	c.mu.Lock()
	if c.stage != StageLoading {
		c.mu.Unlock()
		return utils.ErrWrongStage
	}
	c.stage = StageAwaitingSession
	c.token = token
	c.mu.Unlock()

	res := c.gw.LoadSession(ctx, token, c)
	if res.Value.IsEmpty() {
		utils.Logger.WithField("outcome", res.String()).Warn("Form session load returned no data")
		c.fail(constants.MsgInvalidSession)
		return utils.ErrInvalidSession
	}

	if res.Value.Branding != nil {
		c.theme.Replace(*res.Value.Branding)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.session = res.Value.Session(token)
	c.keyStageDone = c.session.Submitted
	c.resetDraftsLocked()
	c.errMsg = ""
	if c.keyStageDone {
		c.stage = StageInvite
	} else {
		c.stage = StageKeys
	}
	c.touched = time.Now()

	utils.Logger.WithFields(logrus.Fields{
		"stage":     c.stage.String(),
		"slots":     c.session.AvailableUserSlots,
		"active":    c.session.ActiveUsers,
		"existing":  len(c.session.ExistingInvitees),
		"submitted": c.session.Submitted,
		"branding":  c.theme.IsLoaded(),
	}).Info("Form session loaded")
	return nil
}

// SubmitKeys verifies both API keys and records the attempt. On a double
// pass the form moves on to the invite stage; otherwise it stays and the
// returned result flags the failing keys.
func (c *FormController) SubmitKeys(ctx context.Context, in KeyStageInput) (models.KeyVerificationResult, error) {
	c.mu.Lock()
	if c.stage != StageKeys {
		c.mu.Unlock()
		return models.IdleVerification(), utils.ErrWrongStage
	}
	if c.keysBusy {
		c.mu.Unlock()
		return models.IdleVerification(), utils.ErrStageBusy
	}
	c.keysBusy = true
	c.verification = models.IdleVerification()
	c.successMessage = ""
	token := c.token
	paymentEmail := c.session.PaymentEmail
	name := c.session.Name
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.keysBusy = false
		c.touched = time.Now()
		c.mu.Unlock()
	}()

	result := c.gw.VerifyKeys(ctx, in.OpenRouterAPIKey, in.FluxAPIKey, c).Value.Result()

	c.mu.Lock()
	c.verification = result
	c.mu.Unlock()

	firstName := strings.TrimSpace(in.FirstName)
	if firstName == "" {
		firstName = name
	}
	usePayment := in.UsePaymentEmail && strings.TrimSpace(paymentEmail) != ""
	email := ResolveInviteEmail(usePayment, paymentEmail, in.SlackEmail)
	passed := result.Passed()

	c.gw.SubmitKeyForm(ctx, dtos.KeyFormSubmission{
		Answers: dtos.KeyFormAnswers{
			CompanyName:        strings.TrimSpace(in.CompanyName),
			FirstName:          firstName,
			OpenRouterAPIKey:   in.OpenRouterAPIKey,
			FluxAPIKey:         in.FluxAPIKey,
			APIKeysPassed:      passed,
			SlackEmailIsFine:   usePayment,
			FormToken:          token,
			PreferredSlackMail: email,
		},
	}, c)

	entry := utils.Logger.WithFields(logrus.Fields{
		"openrouter": string(result.OpenRouter),
		"flux":       string(result.Flux),
	})
	if !passed {
		entry.Info("API key verification failed")
		return result, nil
	}
	entry.Info("API keys verified")

	c.mu.Lock()
	c.session.Submitted = true
	c.keyStageDone = true
	c.stage = StageInvite
	c.mu.Unlock()

	if c.notifier != nil {
		completion := KeyStageCompletion{
			Token:       token,
			ContactName: firstName,
			CompanyName: strings.TrimSpace(in.CompanyName),
			InviteEmail: email,
			Company:     c.theme.Current().Company,
		}
		go func() {
			if err := c.notifier.NotifyKeyStageComplete(context.WithoutCancel(ctx), completion); err != nil {
				utils.Logger.WithError(err).Warn("Key stage completion notification failed")
			}
		}()
	}
	return result, nil
}

// SetDraft overwrites the draft at index i.
func (c *FormController) SetDraft(i int, d models.InviteeDraft) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i < 0 || i >= len(c.drafts) {
		return utils.ErrDraftIndex
	}
	c.drafts[i] = d
	return nil
}

// AddDraft appends an empty draft while slots remain.
func (c *FormController) AddDraft() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil || len(c.drafts) >= c.session.AvailableUserSlots {
		return utils.ErrNoSlots
	}
	c.drafts = append(c.drafts, models.InviteeDraft{})
	return nil
}

// RemoveDraft drops the draft at index i. The first draft is mandatory
// and cannot be removed.
func (c *FormController) RemoveDraft(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i <= 0 || i >= len(c.drafts) {
		return utils.ErrDraftIndex
	}
	c.drafts = append(c.drafts[:i], c.drafts[i+1:]...)
	return nil
}

// ReplaceDrafts sets all drafts at once, capped at the remaining slots.
func (c *FormController) ReplaceDrafts(drafts []models.InviteeDraft) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replaceDraftsLocked(drafts)
}

// SubmitInvitations invites every complete draft. A nil drafts argument
// submits the drafts already held by the controller.
func (c *FormController) SubmitInvitations(ctx context.Context, drafts []models.InviteeDraft) (InvitationResult, error) {
	c.mu.Lock()
	if c.stage != StageInvite || !c.keyStageDone {
		c.mu.Unlock()
		return InvitationResult{}, utils.ErrWrongStage
	}
	if c.inviteBusy {
		c.mu.Unlock()
		return InvitationResult{}, utils.ErrStageBusy
	}
	if c.session.AvailableUserSlots == 0 {
		c.mu.Unlock()
		return InvitationResult{}, utils.ErrNoSlots
	}
	if len(drafts) > c.session.AvailableUserSlots {
		c.mu.Unlock()
		return InvitationResult{}, utils.ErrTooManyInvitees
	}
	if drafts != nil {
		c.replaceDraftsLocked(drafts)
	}
	if len(c.drafts) == 0 {
		c.mu.Unlock()
		return InvitationResult{}, utils.ErrNoInvitees
	}
	// User 1 is mandatory; later drafts are sent only when complete.
	if !c.drafts[0].Complete() {
		c.mu.Unlock()
		return InvitationResult{}, utils.ErrFirstDraftRequired
	}

	var valid []models.Invitee
	for _, d := range c.drafts {
		if d.Complete() {
			valid = append(valid, d.Invitee())
		}
	}
	c.inviteBusy = true
	c.successMessage = ""
	token := c.token
	c.mu.Unlock()

	res := c.gw.SubmitInvitations(ctx, dtos.InvitationSubmission{FormToken: token, Users: valid}, c)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inviteBusy = false
	c.touched = time.Now()

	if !res.OK() {
		return InvitationResult{Invited: valid, Delivered: false}, nil
	}

	c.session.RecordInvited(valid)
	c.resetDraftsLocked()
	c.successMessage = constants.MsgUsersSubmitted
	if c.session.AvailableUserSlots == 0 {
		c.stage = StageComplete
	}

	utils.Logger.WithFields(logrus.Fields{
		"invited":   len(valid),
		"remaining": c.session.AvailableUserSlots,
	}).Info("Users invited")
	return InvitationResult{Invited: valid, Delivered: true}, nil
}

// TakeNotices returns and clears the queued notices.
func (c *FormController) TakeNotices() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.notices
	c.notices = nil
	return out
}

// Stage returns the current stage.
func (c *FormController) Stage() Stage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stage
}

// LastTouched is the time of the last state change.
func (c *FormController) LastTouched() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.touched
}

// View snapshots the controller for rendering.
func (c *FormController) View() FormView {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := FormView{
		Stage:          c.stage,
		Error:          c.errMsg,
		Token:          c.token,
		Verification:   c.verification,
		KeyStageDone:   c.keyStageDone,
		KeysBusy:       c.keysBusy,
		InviteBusy:     c.inviteBusy,
		SuccessMessage: c.successMessage,
		Theme:          c.theme.Current(),
		Presentation:   c.theme.Presentation(),
		BrandingLoaded: c.theme.IsLoaded(),
	}
	if c.verification.OpenRouter == models.KeyStatusFail {
		v.FailedKeys = append(v.FailedKeys, constants.MsgInvalidORKey)
	}
	if c.verification.Flux == models.KeyStatusFail {
		v.FailedKeys = append(v.FailedKeys, constants.MsgInvalidFluxKey)
	}

	if c.session == nil {
		return v
	}

	v.HasSession = true
	v.Session = *c.session
	v.Session.ExistingInvitees = append(models.InviteeList{}, c.session.ExistingInvitees...)
	v.Drafts = append([]models.InviteeDraft{}, c.drafts...)
	v.ShowKeyStage = !c.session.Submitted && !c.keyStageDone
	v.InviteDimmed = !c.keyStageDone && !c.session.Submitted
	v.NoSlots = c.session.AvailableUserSlots == 0 && len(c.session.ExistingInvitees) == 0
	v.CanAddDraft = c.keyStageDone && len(c.drafts) < c.session.AvailableUserSlots
	v.CanInvite = c.keyStageDone && !c.inviteBusy && len(c.drafts) > 0 && c.drafts[0].Complete()
	return v
}

func (c *FormController) fail(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stage = StageError
	c.errMsg = msg
	c.touched = time.Now()
}

// resetDraftsLocked seeds one empty draft per remaining slot.
func (c *FormController) resetDraftsLocked() {
	c.drafts = make([]models.InviteeDraft, c.session.AvailableUserSlots)
}

func (c *FormController) replaceDraftsLocked(drafts []models.InviteeDraft) {
	limit := 0
	if c.session != nil {
		limit = c.session.AvailableUserSlots
	}
	if len(drafts) > limit {
		drafts = drafts[:limit]
	}
	c.drafts = append([]models.InviteeDraft{}, drafts...)
}
