package service

import "testing"

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status int
		kind   ProviderErrorKind
	}{
		{401, ProviderErrCredential},
		{403, ProviderErrCredential},
		{429, ProviderErrRateLimit},
		{400, ProviderErrGeneric},
		{500, ProviderErrGeneric},
		{502, ProviderErrGeneric},
	}
	for _, tt := range tests {
		if got := classifyStatus(tt.status); got != tt.kind {
			t.Errorf("status %d: expected kind %s, got %s", tt.status, tt.kind, got)
		}
	}
}

func TestProviderErrorMessagesDistinctPerKind(t *testing.T) {
	kinds := []ProviderErrorKind{
		ProviderErrCredential, ProviderErrRateLimit, ProviderErrNotImplemented, ProviderErrGeneric,
	}
	seen := map[string]ProviderErrorKind{}
	for _, kind := range kinds {
		e := &ProviderError{Provider: "NVIDIA", Kind: kind}
		msg := e.Message()
		if msg == "" || e.Remediation() == "" {
			t.Fatalf("kind %s: expected non-empty message and remediation", kind)
		}
		if prev, dup := seen[msg]; dup {
			t.Fatalf("kinds %s and %s share the message %q", prev, kind, msg)
		}
		seen[msg] = kind
	}
}
