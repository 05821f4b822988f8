package evidence

import (
	"fmt"
	"time"
)

// MinComplianceRetention is the minimum retention window for
// compliance-locked payloads (approval decisions and similar records).
const MinComplianceRetention = 7 * 365 * 24 * time.Hour

// ValidatePutOptions checks a retention lock against policy before a WORM
// write. Compliance-mode payloads must be retained for at least
// MinComplianceRetention past the event time.
func ValidatePutOptions(opts PutOptions, eventTime time.Time) error {
	switch opts.LockMode {
	case LockGovernance, LockCompliance:
	default:
		return fmt.Errorf("evidence: unknown lock mode %q", opts.LockMode)
	}
	if opts.RetainUntil.IsZero() {
		return fmt.Errorf("evidence: retain-until must be set for %s lock", opts.LockMode)
	}
	if opts.LockMode == LockCompliance && opts.RetainUntil.Sub(eventTime) < MinComplianceRetention {
		return fmt.Errorf("evidence: compliance payloads require at least %v retention, got %v",
			MinComplianceRetention, opts.RetainUntil.Sub(eventTime))
	}
	return nil
}
