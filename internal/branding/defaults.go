package branding

// DefaultColors is the palette used until the backend sends one.
var DefaultColors = Colors{
	Primary:             "#EFB61D",
	PrimaryMuted:        "#f0c75a",
	PrimaryForeground:   "#FFFFFF",
	Background:          "#393939",
	SecondaryBackground: "#444444",
	BorderColor:         "#555555",
	TextPrimary:         "#FFFFFF",
	TextSecondary:       "#CCCCCC",
}

// DefaultCompany is overridden at startup from COMPANY_* env vars.
var DefaultCompany = Company{
	Name:         "Default Company",
	SupportEmail: "support@example.com",
	Logo:         "/placeholder.svg",
}

// DefaultTheme builds the fallback theme for the given company identity.
// Empty company fields fall back to DefaultCompany.
func DefaultTheme(company Company) Theme {
	if company.Name == "" {
		company.Name = DefaultCompany.Name
	}
	if company.SupportEmail == "" {
		company.SupportEmail = DefaultCompany.SupportEmail
	}
	if company.Logo == "" {
		company.Logo = DefaultCompany.Logo
	}
	return Theme{Colors: DefaultColors, Company: company}
}
