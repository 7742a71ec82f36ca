// intake-service/internal/models/form_session.go
package models

// FormSession is the per-token state loaded from the backend. Counters and
// the invitee list are updated locally after each invitation round.
type FormSession struct {
	Token              string      `json:"token"`
	Name               string      `json:"name,omitempty"`
	AvailableUserSlots int         `json:"availableUserSlots"`
	ActiveUsers        int         `json:"activeUsers"`
	ExistingInvitees   InviteeList `json:"existingInvitees"`
	PaymentEmail       string      `json:"paymentEmail,omitempty"`
	Submitted          bool        `json:"submitted"`
}

// RecordInvited applies a successful invitation round.
func (s *FormSession) RecordInvited(invited []Invitee) {
	n := len(invited)
	s.AvailableUserSlots -= n
	if s.AvailableUserSlots < 0 {
		s.AvailableUserSlots = 0
	}
	s.ActiveUsers += n
	s.ExistingInvitees = append(s.ExistingInvitees, invited...)
}

// KeyStatus is the per-key verification verdict.
type KeyStatus string

const (
	KeyStatusIdle KeyStatus = "idle"
	KeyStatusPass KeyStatus = "pass"
	KeyStatusFail KeyStatus = "fail"
)

// KeyVerificationResult is transient; it is reset to idle at the start of
// every verification attempt.
type KeyVerificationResult struct {
	OpenRouter KeyStatus `json:"openRouter"`
	Flux       KeyStatus `json:"flux"`
}

func IdleVerification() KeyVerificationResult {
	return KeyVerificationResult{OpenRouter: KeyStatusIdle, Flux: KeyStatusIdle}
}

func (r KeyVerificationResult) Passed() bool {
	return r.OpenRouter == KeyStatusPass && r.Flux == KeyStatusPass
}
