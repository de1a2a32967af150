package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// Job is the canonical record every source adapter normalizes into.
// PostedDate is YYYY-MM-DD or empty when the source gives no reliable date.
type Job struct {
	CompanyID   string
	Title       string
	URL         string
	Location    string
	Department  string
	PostedDate  string
	Description string
	WorkMode    string // remote/hybrid/onsite/unknown

	// Classification flags, computed once at ingestion time.
	IsBarcelona        bool
	IsDataRole         bool
	IsGreatFit         bool
	MentionsVisa       bool
	MentionsRelocation bool
}

// IdentityKey derives the dedup fingerprint from (companyID, url).
// Same inputs always yield the same key, across runs and restarts.
func (j Job) IdentityKey() string {
	sum := sha256.Sum256([]byte(j.CompanyID + ":" + j.URL))
	return hex.EncodeToString(sum[:])[:16]
}
