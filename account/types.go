package account

import (
	"encoding/json"

	"github.com/plantify/plantify-go/httpclient"
)

// Default success messages, used when the server sends none.
const (
	MsgRegistered      = "Account created successfully!"
	MsgLoggedIn        = "Login successful!"
	MsgEmailVerified   = "Email verified successfully!"
	MsgOTPSent         = "Verification code sent successfully!"
	MsgProfileUpdated  = "Profile updated successfully!"
	MsgLoggedOut       = "Logged out successfully"
	MsgResetLinkSent   = "Password reset link sent to your email!"
	MsgResetTokenValid = "Token is valid!"
	MsgPasswordReset   = "Password reset successfully!"
	MsgPasswordChanged = "Password changed successfully!"
	MsgSessionExpired  = "Session expired. Please log in again."
)

const (
	profileImageField    = "profile_image"
	defaultImageMIMEType = "image/jpeg"
)

// TokenPair is the credential pair issued on login and email verification.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Profile is the account profile as served by the account service.
type Profile struct {
	ID           int    `json:"id,omitempty"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Phone        string `json:"phone,omitempty"`
	Bio          string `json:"bio,omitempty"`
	ProfileImage string `json:"profile_image,omitempty"`
	IsVerified   bool   `json:"is_verified,omitempty"`
}

// Registration is the sign-up input.
type Registration struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ConfirmPassword string
}

// ProfileUpdate changes the non-empty fields of the profile. With Image set
// the update is sent as multipart form data.
type ProfileUpdate struct {
	FirstName string
	LastName  string
	Phone     string
	Bio       string
	Image     *Image
}

// Image is an uploaded picture.
type Image struct {
	Name        string
	ContentType string
	Data        []byte
}

// PasswordStrength is the server's assessment of a password.
type PasswordStrength struct {
	Score    int    `json:"score"`
	Strength string `json:"strength"`
	Message  string `json:"message"`
}

// envelope is the success wrapper most account routes answer with:
// {"success": "<message>", "data": {...}}.
type envelope struct {
	Success json.RawMessage `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// decode extracts the server message from resp and, when v is non-nil,
// decodes the "data" member into it. Bodies without "data" are decoded
// whole.
func decode(resp *httpclient.Response, v any) (string, error) {
	if len(resp.Body) == 0 {
		return "", nil
	}

	var env envelope
	// non-object bodies carry no message
	_ = json.Unmarshal(resp.Body, &env)

	msg := env.Message
	var s string
	if err := json.Unmarshal(env.Success, &s); err == nil && s != "" {
		msg = s
	}

	if v == nil {
		return msg, nil
	}
	if len(env.Data) > 0 && string(env.Data) != "null" {
		return msg, (&httpclient.Response{StatusCode: resp.StatusCode, Body: env.Data}).JSON(v)
	}
	return msg, resp.JSON(v)
}

func orDefault(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}
