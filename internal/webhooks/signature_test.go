package webhooks

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"
)

func sign(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func signHeader(payload []byte, secret string, ts time.Time) string {
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), sign(payload, secret, ts))
}

func TestVerifySignature(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"invoice.payment_succeeded"}`)
	secret := "whsec_test"
	now := time.Now()

	header := signHeader(payload, secret, now)
	if err := VerifySignature(payload, header, secret, DefaultTolerance, now); err != nil {
		t.Fatalf("valid signature rejected: %v", err)
	}

	if err := VerifySignature(payload, header, "whsec_other", DefaultTolerance, now); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("wrong secret: err = %v, want ErrBadSignature", err)
	}

	if err := VerifySignature([]byte(`tampered`), header, secret, DefaultTolerance, now); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("tampered payload: err = %v, want ErrBadSignature", err)
	}

	if err := VerifySignature(payload, "", secret, DefaultTolerance, now); !errors.Is(err, ErrMissingSignature) {
		t.Fatalf("missing header: err = %v, want ErrMissingSignature", err)
	}

	stale := signHeader(payload, secret, now.Add(-10*time.Minute))
	if err := VerifySignature(payload, stale, secret, DefaultTolerance, now); !errors.Is(err, ErrStaleTimestamp) {
		t.Fatalf("stale timestamp: err = %v, want ErrStaleTimestamp", err)
	}

	// Multiple v1 entries: any matching one passes.
	multi := fmt.Sprintf("t=%d,v1=%s,v1=%s", now.Unix(),
		hex.EncodeToString(make([]byte, 32)), sign(payload, secret, now))
	if err := VerifySignature(payload, multi, secret, DefaultTolerance, now); err != nil {
		t.Fatalf("one of several signatures valid: %v", err)
	}
}
