package service

import "testing"

func TestAdmit(t *testing.T) {
	if !Admit(0, 1) {
		t.Fatal("expected usage 0 under quota 1 to be admitted")
	}
	if !Admit(999, 1000) {
		t.Fatal("expected usage just under quota to be admitted")
	}
	if Admit(1000, 1000) {
		t.Fatal("expected usage equal to quota to be denied")
	}
	if Admit(1001, 1000) {
		t.Fatal("expected usage above quota to be denied")
	}
	if Admit(0, 0) {
		t.Fatal("expected zero quota to deny everything")
	}
}

func TestQuotaForDefaults(t *testing.T) {
	quotas := map[string]int{"dall-e-3": 500}
	if got := QuotaFor(quotas, "dall-e-3"); got != 500 {
		t.Fatalf("expected explicit quota 500, got %d", got)
	}
	if got := QuotaFor(quotas, "gemini"); got != DefaultQuota {
		t.Fatalf("expected default quota %d, got %d", DefaultQuota, got)
	}
	if got := QuotaFor(nil, "gemini"); got != DefaultQuota {
		t.Fatalf("expected default quota for nil map, got %d", got)
	}
}

func TestUsageForDefaults(t *testing.T) {
	if got := UsageFor(nil, "gemini"); got != 0 {
		t.Fatalf("expected zero usage for nil map, got %d", got)
	}
	if got := UsageFor(map[string]int{"gemini": 7}, "gemini"); got != 7 {
		t.Fatalf("expected usage 7, got %d", got)
	}
}
