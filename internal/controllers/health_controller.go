package controllers

import (
	"net/http"

	"github.com/poofware/intake-service/internal/app"
	"github.com/poofware/intake-service/internal/dtos"
	"github.com/poofware/intake-service/internal/utils"
)

type HealthController struct {
	app *app.App
}

func NewHealthController(app *app.App) *HealthController {
	return &HealthController{app}
}

func (c *HealthController) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	if c.app.Config.WebhookBaseURL == "" {
		utils.RespondErrorWithCode(w, http.StatusServiceUnavailable, utils.ErrCodeInternal, "Webhook backend not configured", nil)
		return
	}
	resp := dtos.HealthCheckResponse{Status: "OK", Sessions: c.app.Sessions.Len()}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}
