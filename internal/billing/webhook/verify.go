// Package webhook verifies Polar webhook signatures. Polar signs
// deliveries with the Standard Webhooks scheme: an HMAC-SHA256 over
// "{id}.{timestamp}.{payload}" keyed by the base64 portion of a
// "whsec_" secret, carried base64-encoded in the webhook-signature
// header as space-separated "v1,<signature>" entries.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// timestampTolerance bounds the accepted clock skew so captured
// deliveries cannot be replayed later.
const timestampTolerance = 5 * time.Minute

const secretPrefix = "whsec_"

var (
	// ErrInvalidSignature covers every verification failure. Handlers
	// answer 400 so the sender redelivers.
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// Verify checks a delivery's signature and timestamp. msgID, timestamp
// and signatures come from the webhook-id, webhook-timestamp and
// webhook-signature headers.
func Verify(secret, msgID, timestamp, signatures string, payload []byte) error {
	return verifyAt(secret, msgID, timestamp, signatures, payload, time.Now())
}

func verifyAt(secret, msgID, timestamp, signatures string, payload []byte, now time.Time) error {
	if msgID == "" || timestamp == "" || signatures == "" {
		return ErrInvalidSignature
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	sent := time.Unix(ts, 0)
	if sent.Before(now.Add(-timestampTolerance)) || sent.After(now.Add(timestampTolerance)) {
		return fmt.Errorf("%w: timestamp outside tolerance", ErrInvalidSignature)
	}

	key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, secretPrefix))
	if err != nil {
		return ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, key)
	fmt.Fprintf(mac, "%s.%s.", msgID, timestamp)
	mac.Write(payload)
	want := mac.Sum(nil)

	for _, entry := range strings.Fields(signatures) {
		version, sig, found := strings.Cut(entry, ",")
		if !found || version != "v1" {
			continue
		}
		got, err := base64.StdEncoding.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(got, want) {
			return nil
		}
	}
	return ErrInvalidSignature
}
