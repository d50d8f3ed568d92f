package mailer

import (
	"fmt"
	"time"
)

func VerificationMessage(to, name, code string, ttl time.Duration) Message {
	return Message{
		To:      to,
		Subject: "Verify your Campus Portal account",
		Body: fmt.Sprintf("Hello %s,\n\nYour verification code is: %s\nThe code expires in %d minutes.\n\nIf you did not sign up, ignore this email.",
			name, code, int(ttl.Minutes())),
	}
}

func PasswordResetMessage(to, name, code string, ttl time.Duration) Message {
	return Message{
		To:      to,
		Subject: "Campus Portal password reset",
		Body: fmt.Sprintf("Hello %s,\n\nYour password reset code is: %s\nThe code expires in %d minutes.\n\nIf you did not request a reset, ignore this email.",
			name, code, int(ttl.Minutes())),
	}
}
