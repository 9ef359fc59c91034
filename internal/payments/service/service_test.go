package service

import (
	"testing"

	"github.com/google/uuid"
)

func TestPlatformFeeRoundsToNearestCent(t *testing.T) {
	cases := []struct {
		amount int64
		feeBps int64
		want   int64
	}{
		{10000, 500, 500},  // 5% of $100.00
		{9999, 500, 500},   // 499.95 rounds up
		{101, 500, 5},      // 5.05 rounds down
		{1, 500, 0},        // 0.05 rounds to zero
		{10000, 0, 0},      // no fee configured
		{12345, 1250, 1543},
	}
	for _, tc := range cases {
		if got := PlatformFee(tc.amount, tc.feeBps); got != tc.want {
			t.Fatalf("PlatformFee(%d, %d) = %d, want %d", tc.amount, tc.feeBps, got, tc.want)
		}
	}
}

func TestParseSessionMetadata(t *testing.T) {
	requestID := uuid.New()
	quoteID := uuid.New()

	gotRequest, gotQuote, err := ParseSessionMetadata(map[string]string{
		"requestId": requestID.String(),
		"quoteId":   quoteID.String(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotRequest != requestID || gotQuote != quoteID {
		t.Fatalf("got (%s, %s), want (%s, %s)", gotRequest, gotQuote, requestID, quoteID)
	}
}

func TestParseSessionMetadataRejectsMissingKeys(t *testing.T) {
	if _, _, err := ParseSessionMetadata(map[string]string{"quoteId": uuid.NewString()}); err == nil {
		t.Fatal("expected an error when requestId is missing")
	}
	if _, _, err := ParseSessionMetadata(map[string]string{"requestId": uuid.NewString()}); err == nil {
		t.Fatal("expected an error when quoteId is missing")
	}
	if _, _, err := ParseSessionMetadata(map[string]string{
		"requestId": "not-a-uuid",
		"quoteId":   uuid.NewString(),
	}); err == nil {
		t.Fatal("expected an error for a malformed request id")
	}
}
