// intake-service/internal/models/invitee.go
package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Invitee is a user already invited, or about to be invited, through the form.
type Invitee struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// InviteeDraft is one name/email input pair of the invite stage.
type InviteeDraft struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Complete reports whether both fields are filled.
func (d InviteeDraft) Complete() bool {
	return strings.TrimSpace(d.Name) != "" && strings.TrimSpace(d.Email) != ""
}

// Invitee converts a complete draft into an Invitee.
func (d InviteeDraft) Invitee() Invitee {
	return Invitee{Name: strings.TrimSpace(d.Name), Email: strings.TrimSpace(d.Email)}
}

// InviteeList decodes the backend "emails" field, which arrives in one of
// several shapes:
//
//   - a JSON array of {name, email} objects
//   - a string holding such a JSON array
//   - a comma separated string of email addresses
//
// Anything else decodes to an empty list; it never fails.
type InviteeList []Invitee

func (l *InviteeList) UnmarshalJSON(data []byte) error {
	*l = DecodeInvitees(data)
	return nil
}

// DecodeInvitees applies the InviteeList decoding rules to raw JSON.
func DecodeInvitees(data []byte) InviteeList {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return InviteeList{}
	}

	var list []Invitee
	if err := json.Unmarshal(data, &list); err == nil {
		return filterInvitees(list)
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return ParseInviteeString(s)
	}

	return InviteeList{}
}

// ParseInviteeString decodes the string forms of the "emails" field.
func ParseInviteeString(s string) InviteeList {
	s = strings.TrimSpace(s)
	if s == "" {
		return InviteeList{}
	}

	var list []Invitee
	if err := json.Unmarshal([]byte(s), &list); err == nil {
		return filterInvitees(list)
	}

	out := InviteeList{}
	for _, part := range strings.Split(s, ",") {
		email := strings.TrimSpace(part)
		if email == "" {
			continue
		}
		name, _, _ := strings.Cut(email, "@")
		if name == "" {
			name = "User"
		}
		out = append(out, Invitee{Name: name, Email: email})
	}
	return out
}

func filterInvitees(list []Invitee) InviteeList {
	out := make(InviteeList, 0, len(list))
	for _, inv := range list {
		if inv.Email == "" && inv.Name == "" {
			continue
		}
		out = append(out, inv)
	}
	return out
}
