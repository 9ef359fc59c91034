package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"testing"
	"time"
)

const testSecret = "whsec_dGVzdC1zaWduaW5nLWtleQ=="

func sign(t *testing.T, secret, msgID, timestamp string, payload []byte) string {
	t.Helper()
	key, err := base64.StdEncoding.DecodeString(secret[len(secretPrefix):])
	if err != nil {
		t.Fatalf("decoding secret: %v", err)
	}
	mac := hmac.New(sha256.New, key)
	fmt.Fprintf(mac, "%s.%s.", msgID, timestamp)
	mac.Write(payload)
	return "v1," + base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerifyAcceptsValidSignature(t *testing.T) {
	now := time.Unix(1700000000, 0)
	ts := strconv.FormatInt(now.Unix(), 10)
	payload := []byte(`{"type":"customer.state_changed"}`)
	sig := sign(t, testSecret, "msg_1", ts, payload)

	if err := verifyAt(testSecret, "msg_1", ts, sig, payload, now); err != nil {
		t.Fatalf("expected valid signature to verify, got %v", err)
	}
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	now := time.Unix(1700000000, 0)
	ts := strconv.FormatInt(now.Unix(), 10)
	sig := sign(t, testSecret, "msg_1", ts, []byte(`{"ok":true}`))

	if err := verifyAt(testSecret, "msg_1", ts, sig, []byte(`{"ok":false}`), now); err == nil {
		t.Fatal("expected a tampered payload to fail verification")
	}
}

func TestVerifyRejectsWrongMessageID(t *testing.T) {
	now := time.Unix(1700000000, 0)
	ts := strconv.FormatInt(now.Unix(), 10)
	payload := []byte(`{}`)
	sig := sign(t, testSecret, "msg_1", ts, payload)

	if err := verifyAt(testSecret, "msg_2", ts, sig, payload, now); err == nil {
		t.Fatal("expected a signature bound to another message id to fail")
	}
}

func TestVerifyRejectsStaleTimestamp(t *testing.T) {
	now := time.Unix(1700000000, 0)
	stale := now.Add(-timestampTolerance - time.Second)
	ts := strconv.FormatInt(stale.Unix(), 10)
	payload := []byte(`{}`)
	sig := sign(t, testSecret, "msg_1", ts, payload)

	if err := verifyAt(testSecret, "msg_1", ts, sig, payload, now); err == nil {
		t.Fatal("expected a stale delivery to be rejected")
	}
}

func TestVerifyRejectsFutureTimestamp(t *testing.T) {
	now := time.Unix(1700000000, 0)
	future := now.Add(timestampTolerance + time.Second)
	ts := strconv.FormatInt(future.Unix(), 10)
	payload := []byte(`{}`)
	sig := sign(t, testSecret, "msg_1", ts, payload)

	if err := verifyAt(testSecret, "msg_1", ts, sig, payload, now); err == nil {
		t.Fatal("expected a future-dated delivery to be rejected")
	}
}

func TestVerifyAcceptsAnyMatchingEntry(t *testing.T) {
	now := time.Unix(1700000000, 0)
	ts := strconv.FormatInt(now.Unix(), 10)
	payload := []byte(`{}`)
	good := sign(t, testSecret, "msg_1", ts, payload)
	header := "v1,AAAA v2,ignored " + good

	if err := verifyAt(testSecret, "msg_1", ts, header, payload, now); err != nil {
		t.Fatalf("expected one matching entry among several to verify, got %v", err)
	}
}

func TestVerifyRejectsMissingHeaders(t *testing.T) {
	now := time.Unix(1700000000, 0)
	if err := verifyAt(testSecret, "", "1700000000", "v1,AAAA", []byte(`{}`), now); err == nil {
		t.Fatal("expected a missing message id to be rejected")
	}
	if err := verifyAt(testSecret, "msg_1", "", "v1,AAAA", []byte(`{}`), now); err == nil {
		t.Fatal("expected a missing timestamp to be rejected")
	}
	if err := verifyAt(testSecret, "msg_1", "1700000000", "", []byte(`{}`), now); err == nil {
		t.Fatal("expected a missing signature header to be rejected")
	}
}
