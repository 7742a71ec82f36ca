package branding

import (
	"html/template"
	"sort"
	"strings"
	"sync"

	"github.com/poofware/intake-service/internal/utils"
)

// State tracks where the active theme came from.
type State int

const (
	StateUninitialized State = iota
	StateDefaultApplied
	StateServerApplied
)

func (s State) String() string {
	switch s {
	case StateDefaultApplied:
		return "default_applied"
	case StateServerApplied:
		return "server_applied"
	default:
		return "uninitialized"
	}
}

// transparentPrimaryOpacity matches the 20% brand tint used for badges.
const transparentPrimaryOpacity = 0.2

// Presentation is what the page layer consumes: every CSS variable
// (without the leading "--") plus the effective page colors.
type Presentation struct {
	Variables         map[string]string `json:"variables"`
	PageBackground    string            `json:"pageBackground"`
	PageText          string            `json:"pageText"`
	DarkTextOnPrimary bool              `json:"darkTextOnPrimary"`
}

// CSS renders the variables as a ":root" rule, sorted by name.
func (p Presentation) CSS() template.CSS {
	names := make([]string, 0, len(p.Variables))
	for name := range p.Variables {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(":root{")
	for _, name := range names {
		b.WriteString("--")
		b.WriteString(name)
		b.WriteString(":")
		b.WriteString(sanitizeCSSValue(p.Variables[name]))
		b.WriteString(";")
	}
	b.WriteString("}")
	b.WriteString("body{background-color:" + sanitizeCSSValue(p.PageBackground) +
		";color:" + sanitizeCSSValue(p.PageText) + ";}")
	return template.CSS(b.String())
}

// Store holds the theme of one form session. The form controller is its
// only writer; views read it concurrently.
type Store struct {
	mu           sync.RWMutex
	fallback     Theme
	theme        Theme
	state        State
	presentation Presentation
}

// NewStore returns a store with fallback already applied.
func NewStore(fallback Theme) *Store {
	s := &Store{fallback: fallback}
	s.Bootstrap()
	return s
}

// Bootstrap applies the fallback theme. It does nothing once a server
// theme has been applied.
func (s *Store) Bootstrap() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateServerApplied {
		return
	}
	s.apply(s.fallback)
	s.state = StateDefaultApplied
}

// Current returns the active theme.
func (s *Store) Current() Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state == StateUninitialized {
		return s.fallback
	}
	return s.theme
}

// Replace swaps in theme and exports it to the presentation layer.
func (s *Store) Replace(theme Theme) {
	s.mu.Lock()
	defer s.mu.Unlock()

	utils.Logger.Debugf("Updating branding for company %q", theme.Company.Name)
	s.apply(theme)
	s.state = StateServerApplied
}

// IsLoaded reports whether a server theme has been applied.
func (s *Store) IsLoaded() bool {
	return s.State() == StateServerApplied
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Presentation returns a copy of the exported variables.
func (s *Store) Presentation() Presentation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vars := make(map[string]string, len(s.presentation.Variables))
	for k, v := range s.presentation.Variables {
		vars[k] = v
	}
	p := s.presentation
	p.Variables = vars
	return p
}

// apply must be called with s.mu held for writing.
func (s *Store) apply(theme Theme) {
	s.theme = theme

	colors := theme.Colors.cssColors()
	vars := make(map[string]string, len(colors)*2+1)
	for name, value := range colors {
		vars[name] = value
	}
	for name, rgb := range GenerateRGBVariables(colors) {
		vars[name] = rgb
	}
	vars["color-primary-transparent"] = CreateTransparentColor(theme.Colors.Primary, transparentPrimaryOpacity)

	s.presentation = Presentation{
		Variables:         vars,
		PageBackground:    theme.Colors.Background,
		PageText:          theme.Colors.TextPrimary,
		DarkTextOnPrimary: ShouldUseDarkText(theme.Colors.Primary),
	}
}

// sanitizeCSSValue drops characters that could close the declaration or
// the style element. Backend branding is not trusted.
func sanitizeCSSValue(v string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ';', '{', '}', '<', '>', '\\', '"', '\'', '\n', '\r':
			return -1
		}
		return r
	}, v)
}
