package sealer

import "testing"

func TestOpaqueTokenRoundTrip(t *testing.T) {
	token, err := CreateOpaqueToken("bk-42", "client-7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" {
		t.Fatal("expected a non-empty token")
	}

	bookingID, actorID, err := ParseOpaqueToken(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bookingID != "bk-42" || actorID != "client-7" {
		t.Errorf("round trip gave %q / %q", bookingID, actorID)
	}
}

func TestOpaqueTokenUnique(t *testing.T) {
	// Random nonce: the same input must not produce the same token twice.
	a, err := CreateOpaqueToken("bk-42", "client-7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := CreateOpaqueToken("bk-42", "client-7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a == b {
		t.Error("expected distinct tokens for distinct calls")
	}
}

func TestParseOpaqueToken_Garbage(t *testing.T) {
	for _, token := range []string{"", "not-a-token", "YWJj"} {
		if _, _, err := ParseOpaqueToken(token); err == nil {
			t.Errorf("expected error for %q", token)
		}
	}
}
