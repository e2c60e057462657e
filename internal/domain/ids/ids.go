package ids

import (
	"crypto/rand"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	ulidRegex = regexp.MustCompile(`(?i)^[0-9A-HJKMNP-TV-Z]{26}$`)

	ErrInvalidQrID = errors.New("invalid qr id")
)

// NewQrID mints a ULID used as the scannable QR identifier on statistic
// records. ULIDs sort by creation time, which keeps QR lookups index-friendly.
func NewQrID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// IsQrID returns true when value is a valid ULID (case-insensitive Crockford Base32).
func IsQrID(value string) bool {
	return ulidRegex.MatchString(strings.TrimSpace(value))
}

// ValidateQrID validates a QR identifier.
func ValidateQrID(value string) error {
	if !IsQrID(value) {
		return ErrInvalidQrID
	}
	return nil
}
