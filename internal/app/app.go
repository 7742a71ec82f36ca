package app

import (
	"github.com/poofware/intake-service/internal/config"
	"github.com/poofware/intake-service/internal/gateway"
	"github.com/poofware/intake-service/internal/services"
	"github.com/poofware/intake-service/internal/utils"
)

// App struct holds references to config & services.
type App struct {
	Config   *config.Config
	Gateway  services.Gateway
	Sessions *services.SessionRegistry
	Notifier services.CompletionNotifier
}

// NewApp sets up the webhook client and the session registry. There is no
// database; form state lives in the registry until it expires.
func NewApp(cfg *config.Config) *App {
	utils.Logger.Info("Initializing intake-service App")

	gw := gateway.NewClient(cfg.WebhookBaseURL, cfg.WebhookTimeout, nil)

	var notifier services.CompletionNotifier
	if cfg.NotificationsEnabled() {
		notifier = services.NewSendgridNotifier(cfg.AppName, cfg.SendgridAPIKey, cfg.SendgridFromEmail)
		utils.Logger.Info("Key stage completion emails enabled")
	}

	return NewAppWithGateway(cfg, gw, notifier)
}

// NewAppWithGateway wires the registry around an arbitrary webhook gateway.
func NewAppWithGateway(cfg *config.Config, gw services.Gateway, notifier services.CompletionNotifier) *App {
	sessions := services.NewSessionRegistry(gw, cfg.Theme(), notifier, cfg.TokenGraceWindow, cfg.SessionTTL)
	return &App{
		Config:   cfg,
		Gateway:  gw,
		Sessions: sessions,
		Notifier: notifier,
	}
}

// Close is a no-op here but included for consistency.
func (a *App) Close() {
	utils.Logger.Info("intake-service app shutting down.")
	a.Config.Close()
}
