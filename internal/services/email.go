package services

import "strings"

// ResolveInviteEmail picks the address submitted as the Slack invite email.
// A checked "use payment email" toggle wins over manual edits; an empty
// manual entry falls back to the payment email.
func ResolveInviteEmail(usePaymentEmail bool, paymentEmail, manualEmail string) string {
	paymentEmail = strings.TrimSpace(paymentEmail)
	manualEmail = strings.TrimSpace(manualEmail)

	if usePaymentEmail && paymentEmail != "" {
		return paymentEmail
	}
	if manualEmail != "" {
		return manualEmail
	}
	return paymentEmail
}
