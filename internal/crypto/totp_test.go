package crypto

import (
	"testing"
	"time"
)

// rfcSecret is the RFC 6238 appendix B shared secret ("12345678901234567890")
// in base32.
const rfcSecret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"

func TestTOTPAtRFCVectors(t *testing.T) {
	// RFC 6238 appendix B vectors (SHA-1), truncated to 6 digits.
	tests := []struct {
		unix int64
		want string
	}{
		{59, "287082"},
		{1111111109, "081804"},
		{1111111111, "050471"},
		{1234567890, "005924"},
		{2000000000, "279037"},
		{20000000000, "353130"},
	}

	for _, tt := range tests {
		got, err := TOTPAt(rfcSecret, time.Unix(tt.unix, 0).UTC())
		if err != nil {
			t.Fatalf("TOTPAt(%d): %v", tt.unix, err)
		}
		if got != tt.want {
			t.Errorf("TOTPAt(%d) = %q, want %q", tt.unix, got, tt.want)
		}
	}
}

func TestTOTPAtToleratesLowercaseAndSpaces(t *testing.T) {
	got, err := TOTPAt("gezd gnbv gy3t qojq gezd gnbv gy3t qojq", time.Unix(59, 0))
	if err != nil {
		t.Fatalf("TOTPAt: %v", err)
	}
	if got != "287082" {
		t.Errorf("TOTPAt = %q, want 287082", got)
	}
}

func TestTOTPAtRejectsInvalidSecret(t *testing.T) {
	if _, err := TOTPAt("not!base32", time.Unix(59, 0)); err == nil {
		t.Error("expected error for invalid base32 secret")
	}
}

func TestTOTPIsSixDigits(t *testing.T) {
	code, err := TOTP(rfcSecret)
	if err != nil {
		t.Fatalf("TOTP: %v", err)
	}
	if len(code) != 6 {
		t.Errorf("len(code) = %d, want 6 (code %q)", len(code), code)
	}
}
