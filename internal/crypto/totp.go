// Package crypto implements the time-based one-time password generation
// required by the brokerage login flow: RFC 6238 with SHA-1, 6 digits and a
// 30 s time step, the parameters the SmartAPI authenticator uses.
package crypto

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"strings"
	"time"
)

const (
	totpDigits = 6
	totpPeriod = 30 * time.Second
)

// TOTP returns the current one-time password for a base32-encoded secret.
func TOTP(secret string) (string, error) {
	return TOTPAt(secret, time.Now())
}

// TOTPAt is like TOTP but lets the caller supply the time (useful for
// deterministic testing).
func TOTPAt(secret string, t time.Time) (string, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return "", fmt.Errorf("crypto: decode totp secret: %w", err)
	}

	counter := uint64(t.Unix()) / uint64(totpPeriod.Seconds())

	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], counter)

	mac := hmac.New(sha1.New, key)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	// Dynamic truncation (RFC 4226 §5.3).
	offset := sum[len(sum)-1] & 0x0f
	code := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff

	return fmt.Sprintf("%0*d", totpDigits, code%1_000_000), nil
}

// decodeSecret parses a base32 secret, tolerating lowercase input, spaces,
// and missing padding as authenticator apps commonly emit them.
func decodeSecret(secret string) ([]byte, error) {
	s := strings.ToUpper(strings.ReplaceAll(secret, " ", ""))
	s = strings.TrimRight(s, "=")
	return base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(s)
}
