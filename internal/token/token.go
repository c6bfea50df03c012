package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// KindAttendance is the only payload tag the marker accepts.
const KindAttendance = "attendance"

// ErrMalformed is returned when a scanned payload does not decode or is
// missing required fields. No partial token is ever returned alongside it.
var ErrMalformed = errors.New("malformed attendance token")

var validate = validator.New()

// Token is the decoded scan payload asserting a session is happening on a
// given calendar date. Field names are the wire contract with the code
// generator, so they stay as-is.
type Token struct {
	Kind        string `json:"type" validate:"required,eq=attendance"`
	SessionDate string `json:"date" validate:"required"`
	SessionID   string `json:"sessionId"`
	IssuedAtMS  int64  `json:"timestamp"`
}

func (t Token) valid() error {
	return validate.Struct(t)
}

// Parse decodes raw into a Token, failing closed on anything that is not a
// well-formed attendance payload. Any decode failure or missing required
// field yields ErrMalformed; no partial token is ever returned.
func Parse(raw string) (Token, error) {
	var t Token
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return Token{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := t.valid(); err != nil {
		return Token{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return t, nil
}

// Mint creates a fresh token for the given session date. Session ids are
// opaque; nothing checks them against a registry yet.
func Mint(sessionDate string) Token {
	return Token{
		Kind:        KindAttendance,
		SessionDate: sessionDate,
		SessionID:   "session-" + uuid.NewString(),
		IssuedAtMS:  time.Now().UnixMilli(),
	}
}

// Encode renders the token in its wire form, suitable for embedding in a QR
// code by the presentation side.
func (t Token) Encode() (string, error) {
	b, err := json.Marshal(t)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
