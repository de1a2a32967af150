package domain

// Company is one entry of the static source registry. The pipeline reads it,
// never mutates it.
type Company struct {
	ID               string   `yaml:"id"`
	Name             string   `yaml:"name"`
	Platform         string   `yaml:"platform"`    // greenhouse/lever/workable/ashby/smartrecruiters/workday/amazon/sap/email/manual
	PlatformID       string   `yaml:"platform_id"` // board token / slug / tenant, empty for custom platforms
	KnownVisaSponsor bool     `yaml:"known_visa_sponsor"`
	EthicsRating     string   `yaml:"ethics_rating"`
	Notes            string   `yaml:"notes"`
	EmailSenders     []string `yaml:"email_senders"`     // inbox-alert sources only
	EmailURLPatterns []string `yaml:"email_url_patterns"` // regexes a job link must match
}
