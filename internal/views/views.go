package views

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/poofware/intake-service/internal/branding"
	"github.com/poofware/intake-service/internal/constants"
	"github.com/poofware/intake-service/internal/models"
	"github.com/poofware/intake-service/internal/services"
	"github.com/poofware/intake-service/internal/utils"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
	"statusClass": func(s models.KeyStatus) string {
		switch s {
		case models.KeyStatusPass:
			return "pass"
		case models.KeyStatusFail:
			return "fail"
		default:
			return ""
		}
	},
}).ParseFS(templatesFS, "templates/*.html"))

// Page is everything the form page template reads.
type Page struct {
	Form              services.FormView
	Notices           []services.Notice
	Company           branding.Company
	CSS               template.CSS
	DarkTextOnPrimary bool
	KeysAction        string
	InviteAction      string
	IndexPath         string
	TokenParam        string
	Year              int
}

// NewPage builds the page for a controller snapshot. Actions are the POST
// targets of the two stage forms.
func NewPage(v services.FormView, notices []services.Notice, keysAction, inviteAction string) Page {
	return Page{
		Form:              v,
		Notices:           notices,
		Company:           v.Theme.Company,
		CSS:               v.Presentation.CSS(),
		DarkTextOnPrimary: v.Presentation.DarkTextOnPrimary,
		KeysAction:        keysAction,
		InviteAction:      inviteAction,
		IndexPath:         "/",
		TokenParam:        constants.TokenParam,
		Year:              time.Now().Year(),
	}
}

// ErrorPage renders msg on the fallback theme, for requests that never
// reached a form session.
func ErrorPage(fallback branding.Theme, msg string) Page {
	store := branding.NewStore(fallback)
	return NewPage(services.FormView{
		Stage:        services.StageError,
		Error:        msg,
		Theme:        store.Current(),
		Presentation: store.Presentation(),
	}, nil, "", "")
}

// Render writes page with status. The template is executed into a buffer
// first so a failure never leaves a half-written page.
func Render(w http.ResponseWriter, status int, page Page) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "page.html", page); err != nil {
		utils.Logger.WithError(err).Error("Failed to render form page")
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
