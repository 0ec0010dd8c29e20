package schema

import (
	"encoding/json"
)

// PasswordResetToken is the message handed to the mailer that delivers the
// reset link.
type PasswordResetToken struct {
	RecipientEmail string `json:"recipientEmail"`
	RecipientName  string `json:"recipientName"`
	ResetToken     string `json:"resetToken"`
	ResetURL       string `json:"resetUrl"`
}

func (m *PasswordResetToken) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

func (m *PasswordResetToken) Unmarshal(data []byte) error {
	return json.Unmarshal(data, m)
}
