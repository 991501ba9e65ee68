package service

// DefaultQuota applies to any model the user has no explicit limit for.
const DefaultQuota = 1000

// Admit reports whether a request against a model may proceed given its
// current usage and quota. Pure pre-check: it reserves nothing, so the
// storage-layer conditional increment is what actually holds the line under
// concurrency.
func Admit(usage, quota int) bool {
	return usage < quota
}

// QuotaFor returns the user's quota for a model, falling back to DefaultQuota
// when no explicit limit is set.
func QuotaFor(quotas map[string]int, model string) int {
	if q, ok := quotas[model]; ok {
		return q
	}
	return DefaultQuota
}

// UsageFor returns the current usage count for a model, zero when unset.
func UsageFor(usage map[string]int, model string) int {
	return usage[model]
}
