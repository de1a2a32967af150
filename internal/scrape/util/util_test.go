package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalizeURL(t *testing.T) {
	in := "HTTPS://Jobs.Example.com/apply?utm_source=email&gclid=abc&id=42#top"
	assert.Equal(t, "https://jobs.example.com/apply?id=42", CanonicalizeURL(in))

	// identical inputs stay identical regardless of param order
	a := CanonicalizeURL("https://x.co/j?b=2&a=1")
	b := CanonicalizeURL("https://x.co/j?a=1&b=2")
	assert.Equal(t, a, b)
}

func TestStripQuery(t *testing.T) {
	assert.Equal(t, "https://jobs.hp.com/job/123", StripQuery("https://jobs.hp.com/job/123?trk=email&ref=alert"))
	assert.Equal(t, "https://jobs.hp.com/job/123", StripQuery("//jobs.hp.com/job/123?x=1"))
	assert.Equal(t, "https://jobs.hp.com/job/123", StripQuery("jobs.hp.com/job/123"))
}

func TestNormalizeLocation(t *testing.T) {
	assert.Equal(t, "Barcelona, Spain", NormalizeLocation("  Barcelona ,  Spain "))
	assert.Equal(t, "Barcelona, Spain", NormalizeLocation("Barcelona, Barcelona, Spain"))
	assert.Equal(t, "Barcelona", NormalizeLocation("Location: Barcelona"))
}

func TestNormalizeDate(t *testing.T) {
	assert.Equal(t, "2026-02-10", NormalizeDate("2026-02-10T09:00:00Z"))
	assert.Equal(t, "2026-02-10", NormalizeDate("2026-02-10"))
	assert.Equal(t, "2026-01-13", NormalizeDate("January 13, 2026"))
	assert.Equal(t, "2026-02-20", NormalizeDate("Feb 20, 2026"))
	assert.Equal(t, "", NormalizeDate("Posted Today"))
	assert.Equal(t, "", NormalizeDate(""))
}

func TestDateFromMillis(t *testing.T) {
	assert.Equal(t, "2026-02-10", DateFromMillis(1770681600000))
	assert.Equal(t, "", DateFromMillis(0))
}
