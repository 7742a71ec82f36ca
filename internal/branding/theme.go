package branding

// Colors is the palette the form is skinned with. Every value is a hex
// color, "#RGB" or "#RRGGBB".
type Colors struct {
	Primary             string `json:"primary"`
	PrimaryMuted        string `json:"primaryMuted"`
	PrimaryForeground   string `json:"primaryForeground"`
	Background          string `json:"background"`
	SecondaryBackground string `json:"secondaryBackground"`
	BorderColor         string `json:"borderColor"`
	TextPrimary         string `json:"textPrimary"`
	TextSecondary       string `json:"textSecondary"`
}

// Company is the identity shown in the page header and footer.
type Company struct {
	Name         string `json:"name"`
	SupportEmail string `json:"supportEmail"`
	Logo         string `json:"logo"`
}

// Theme is replaced wholesale, never merged field by field.
type Theme struct {
	Colors  Colors  `json:"colors"`
	Company Company `json:"company"`
}

// cssColors lists the CSS custom property name of every palette entry.
func (c Colors) cssColors() map[string]string {
	return map[string]string{
		"color-primary":              c.Primary,
		"color-primary-muted":        c.PrimaryMuted,
		"color-primary-foreground":   c.PrimaryForeground,
		"color-background":           c.Background,
		"color-secondary-background": c.SecondaryBackground,
		"color-border":               c.BorderColor,
		"color-text-primary":         c.TextPrimary,
		"color-text-secondary":       c.TextSecondary,
	}
}
