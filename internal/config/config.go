package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	ld "github.com/launchdarkly/go-server-sdk/v7"

	"github.com/poofware/intake-service/internal/branding"
	"github.com/poofware/intake-service/internal/utils"
)

type Config struct {
	AppName            string
	Env                string
	AppPort            string
	AppUrl             string
	WebhookBaseURL     string
	WebhookTimeout     time.Duration
	TokenGraceWindow   time.Duration
	SessionTTL         time.Duration
	RateLimitRPS       float64
	RateLimitBurst     int
	SendgridAPIKey     string
	SendgridFromEmail  string
	CORSAllowedOrigins []string
	Company            branding.Company

	LDFlag_WebhookTimeoutMS         int
	LDFlag_NotifyOnKeyStageComplete bool
}

const (
	DefaultAppName      = "intake-service"
	LDConnectionTimeout = 5 * time.Second
)

// Default values, override via ldflags at build time.
var (
	AppName             string
	LDServerContextKey  string
	LDServerContextKind string
)

// envSpec is the raw environment, parsed by caarlos0/env.
type envSpec struct {
	Env                 string        `env:"ENV" envDefault:"dev"`
	AppPort             string        `env:"APP_PORT" envDefault:"8080"`
	AppUrl              string        `env:"APP_URL_FROM_ANYWHERE"`
	WebhookBaseURL      string        `env:"WEBHOOK_BASE_URL" envDefault:"https://n8n-main-instance-production-1345.up.railway.app/webhook"`
	WebhookTimeout      time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"30s"`
	TokenGraceWindow    time.Duration `env:"TOKEN_GRACE_WINDOW" envDefault:"500ms"`
	SessionTTL          time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	RateLimitRPS        float64       `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst      int           `env:"RATE_LIMIT_BURST" envDefault:"10"`
	SendgridAPIKey      string        `env:"SENDGRID_API_KEY"`
	SendgridFromEmail   string        `env:"SENDGRID_FROM_EMAIL"`
	CompletionNotify    bool          `env:"COMPLETION_NOTIFY" envDefault:"false"`
	CORSAllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	LDSDKKey            string        `env:"LD_SDK_KEY"`
	LDServerContextKey  string        `env:"LD_SERVER_CONTEXT_KEY"`
	LDServerContextKind string        `env:"LD_SERVER_CONTEXT_KIND"`
	CompanyName         string        `env:"COMPANY_NAME"`
	CompanySupportEmail string        `env:"COMPANY_SUPPORT_EMAIL"`
	CompanyLogoURL      string        `env:"COMPANY_LOGO_URL"`
}

// flagEvaluator is the part of *ld.LDClient used to snapshot flags.
type flagEvaluator interface {
	BoolVariation(key string, context ldcontext.Context, defaultVal bool) (bool, error)
	IntVariation(key string, context ldcontext.Context, defaultVal int) (int, error)
}

// AppNameOrDefault returns the ldflags app name, or DefaultAppName.
func AppNameOrDefault() string {
	if AppName == "" {
		return DefaultAppName
	}
	return AppName
}

func LoadConfig() *Config {
	AppName = AppNameOrDefault()
	utils.Logger.Info("Loading config for app: ", AppName)

	var spec envSpec
	if err := env.Parse(&spec); err != nil {
		utils.Logger.WithError(err).Fatal("Failed to parse environment")
	}

	cfg, err := fromEnv(AppName, spec)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Invalid configuration")
	}

	//----------------------------------------------------------------------
	// LaunchDarkly flags (optional)
	//----------------------------------------------------------------------
	if spec.LDSDKKey == "" {
		utils.Logger.Debug("LD_SDK_KEY not set, using environment defaults for flags")
		return cfg
	}

	ldClient, err := ld.MakeClient(spec.LDSDKKey, LDConnectionTimeout)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to create LaunchDarkly client")
	}
	defer ldClient.Close()
	if !ldClient.Initialized() {
		utils.Logger.Fatal("LaunchDarkly client failed to initialize")
	}

	contextKey := firstNonEmpty(spec.LDServerContextKey, LDServerContextKey, AppName)
	contextKind := firstNonEmpty(spec.LDServerContextKind, LDServerContextKind, "service")
	ldCtx := ldcontext.NewWithKind(ldcontext.Kind(contextKind), contextKey)

	if err := cfg.applyFlags(ldClient, ldCtx); err != nil {
		utils.Logger.WithError(err).Fatal("Error retrieving LaunchDarkly flags")
	}
	return cfg
}

// fromEnv validates the parsed environment and converts it into a Config.
func fromEnv(appName string, spec envSpec) (*Config, error) {
	if strings.TrimSpace(spec.WebhookBaseURL) == "" {
		return nil, fmt.Errorf("WEBHOOK_BASE_URL must not be empty")
	}
	if spec.WebhookTimeout <= 0 {
		return nil, fmt.Errorf("WEBHOOK_TIMEOUT must be positive, got %s", spec.WebhookTimeout)
	}
	if spec.TokenGraceWindow < 0 {
		return nil, fmt.Errorf("TOKEN_GRACE_WINDOW must not be negative, got %s", spec.TokenGraceWindow)
	}
	if spec.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive, got %s", spec.SessionTTL)
	}
	if spec.CompletionNotify && (spec.SendgridAPIKey == "" || spec.SendgridFromEmail == "") {
		utils.Logger.Warn("COMPLETION_NOTIFY is on but SendGrid is not configured; notifications disabled")
	}

	appUrl := spec.AppUrl
	if appUrl == "" {
		appUrl = "http://localhost:" + spec.AppPort
	}
	utils.Logger.Debugf("App can be accessed at: %s", appUrl)

	return &Config{
		AppName:            appName,
		Env:                spec.Env,
		AppPort:            spec.AppPort,
		AppUrl:             appUrl,
		WebhookBaseURL:     strings.TrimRight(spec.WebhookBaseURL, "/"),
		WebhookTimeout:     spec.WebhookTimeout,
		TokenGraceWindow:   spec.TokenGraceWindow,
		SessionTTL:         spec.SessionTTL,
		RateLimitRPS:       spec.RateLimitRPS,
		RateLimitBurst:     spec.RateLimitBurst,
		SendgridAPIKey:     spec.SendgridAPIKey,
		SendgridFromEmail:  spec.SendgridFromEmail,
		CORSAllowedOrigins: spec.CORSAllowedOrigins,
		Company: branding.Company{
			Name:         spec.CompanyName,
			SupportEmail: spec.CompanySupportEmail,
			Logo:         spec.CompanyLogoURL,
		},
		LDFlag_WebhookTimeoutMS:         int(spec.WebhookTimeout / time.Millisecond),
		LDFlag_NotifyOnKeyStageComplete: spec.CompletionNotify,
	}, nil
}

// applyFlags overrides env defaults with the flag values served for ldCtx.
func (c *Config) applyFlags(flags flagEvaluator, ldCtx ldcontext.Context) error {
	timeoutMS, err := flags.IntVariation("webhook_timeout_ms", ldCtx, c.LDFlag_WebhookTimeoutMS)
	if err != nil {
		return fmt.Errorf("webhook_timeout_ms: %w", err)
	}
	if timeoutMS > 0 {
		c.LDFlag_WebhookTimeoutMS = timeoutMS
		c.WebhookTimeout = time.Duration(timeoutMS) * time.Millisecond
	}
	utils.Logger.Debugf("webhook_timeout_ms flag: %d", c.LDFlag_WebhookTimeoutMS)

	notify, err := flags.BoolVariation("notify_on_key_stage_complete", ldCtx, c.LDFlag_NotifyOnKeyStageComplete)
	if err != nil {
		return fmt.Errorf("notify_on_key_stage_complete: %w", err)
	}
	c.LDFlag_NotifyOnKeyStageComplete = notify
	utils.Logger.Debugf("notify_on_key_stage_complete flag: %t", notify)
	return nil
}

// NotificationsEnabled reports whether key stage completions are mailed.
func (c *Config) NotificationsEnabled() bool {
	return c.LDFlag_NotifyOnKeyStageComplete && c.SendgridAPIKey != "" && c.SendgridFromEmail != ""
}

// Theme is the fallback branding for sessions without server branding.
func (c *Config) Theme() branding.Theme {
	return branding.DefaultTheme(c.Company)
}

func (c *Config) Close() {}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
