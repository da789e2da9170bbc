package internal

import "testing"

func TestSessionIDRoundTrip(t *testing.T) {
	sid, err := NewSessionID()
	if err != nil {
		t.Fatalf("NewSessionID failed: %v", err)
	}

	encoded := sid.String()
	if len(encoded) != 22 {
		t.Fatalf("encoded length = %d, want 22", len(encoded))
	}

	parsed, err := ParseSessionID(encoded)
	if err != nil {
		t.Fatalf("ParseSessionID failed: %v", err)
	}
	if parsed != sid {
		t.Fatalf("round trip mismatch: %v != %v", parsed, sid)
	}
}

func TestParseSessionIDRejectsMalformedHandles(t *testing.T) {
	cases := []struct {
		name   string
		handle string
	}{
		{"empty", ""},
		{"not base64url", "not base64 at all!"},
		{"too short", "never-issued"},
		{"too long", "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseSessionID(tc.handle); err == nil {
				t.Fatalf("ParseSessionID(%q) accepted a malformed handle", tc.handle)
			}
		})
	}
}
