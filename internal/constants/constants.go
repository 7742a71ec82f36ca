package constants

import "time"

const (
	// TokenParam is the URL parameter carrying the form token.
	TokenParam = "formToken"

	// A trailing path segment counts as a token only when longer than this.
	MinPathTokenLength = 8

	TokenPollInterval = 25 * time.Millisecond

	MsgNoToken        = "No form token provided. Please check the URL."
	MsgInvalidSession = "Invalid form token or no data received."
	MsgUsersSubmitted = "Users submitted! Invites will arrive shortly!"
	MsgInvalidORKey   = "The OpenRouter API key is invalid"
	MsgInvalidFluxKey = "The Black Forest Labs API key is invalid"

	MsgNoInvitees = "Please enter a name and email for at least one user."
	MsgNoSlots    = "No user slots available."
	MsgFirstUser  = "Please enter a name and email for User 1."
	MsgTooMany    = "You entered more users than there are available slots."
	MsgStageBusy  = "Your previous submission is still being processed."
	MsgWrongStage = "This step is not available right now."
)
