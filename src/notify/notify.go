// Package notify delivers password-reset tokens to users.
package notify

import (
	"context"
	"encoding/json"
	"log"
	"time"
)

type PasswordReset struct {
	UserID    string
	Email     string
	Name      string
	Token     string
	ExpiresAt time.Time
}

type Notifier interface {
	SendPasswordReset(ctx context.Context, reset PasswordReset) error
}

// Message is the JSON payload published for downstream mailers.
type Message struct {
	Type      string    `json:"type"`
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

const MessageTypePasswordReset = "password_reset"

func NewPasswordResetMessage(reset PasswordReset) Message {
	return Message{
		Type:      MessageTypePasswordReset,
		UserID:    reset.UserID,
		Email:     reset.Email,
		Name:      reset.Name,
		Token:     reset.Token,
		ExpiresAt: reset.ExpiresAt.UTC(),
	}
}

func (m Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LogNotifier writes the token to the server log. Development only: the log is the delivery channel.
type LogNotifier struct{}

func (LogNotifier) SendPasswordReset(ctx context.Context, reset PasswordReset) error {
	log.Printf("INFO: Password reset token for user %s (%s): %s (expires %s)",
		reset.UserID, reset.Email, reset.Token, reset.ExpiresAt.Format(time.RFC3339))
	return nil
}
