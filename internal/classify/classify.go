// Package classify holds the pure filtering heuristics the adapters share.
// Everything here is curated keyword matching over (title, description,
// location): deliberately simple and recall-biased, not a language model.
package classify

import (
	"regexp"
	"strings"
)

var barcelonaPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bbarcelona\b`),
	regexp.MustCompile(`(?i)\bbcn\b`),
	regexp.MustCompile(`(?i)\bspain\b.*\bremote\b`),
	regexp.MustCompile(`(?i)\bremote\b.*\bspain\b`),
	regexp.MustCompile(`(?i)\bhybrid\b.*\bbarcelona\b`),
	regexp.MustCompile(`(?i)\bbarcelona\b.*\bhybrid\b`),
}

// Broad on purpose: accept false positives rather than miss a real opening.
var dataRoleKeywords = []string{
	"data scientist",
	"data analyst",
	"data engineer",
	"machine learning",
	"ml engineer",
	"ai engineer",
	"artificial intelligence",
	"analytics engineer",
	"applied scientist",
	"research scientist",
	"deep learning",
	"nlp engineer",
	"computer vision",
	"data science",
}

var greatFitKeywords = []string{
	"data scientist",
	"data science",
	"machine learning engineer",
	"ml engineer",
	"mle",
	"data analyst",
	"ai engineer",
	"applied scientist",
	"research scientist",
	"deep learning",
	"nlp engineer",
	"computer vision engineer",
	"artificial intelligence",
}

var greatFitExclusions = []string{
	"intern",
	"internship",
	"product manager",
	"product owner",
	"software engineer",
	"software developer",
	"backend engineer",
	"frontend engineer",
	"full stack",
	"fullstack",
	"devops",
	"sre",
	"site reliability",
	"account manager",
	"sales",
	"marketing",
	"recruiter",
	"hr ",
	"human resources",
	"content",
	"designer",
	"ux ",
	"ui ",
	"customer success",
	"support engineer",
	"qa engineer",
	"test engineer",
	"project manager",
	"program manager",
	"business analyst",
	"financial analyst",
	"junior",
}

var visaKeywords = []string{
	"visa sponsorship",
	"visa sponsor",
	"work permit",
	"work authorization",
	"relocation support",
	"relocation package",
	"relocation assistance",
	"willing to relocate",
	"help with relocation",
}

var relocationKeywords = []string{
	"relocation",
	"relocate",
	"moving assistance",
	"moving package",
}

// Spanish/Catalan marker words.
var nonEnglishPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bsomos\b`),
	regexp.MustCompile(`(?i)\bbuscamos\b`),
	regexp.MustCompile(`(?i)\bempresa\b`),
	regexp.MustCompile(`(?i)\btrabajo\b`),
	regexp.MustCompile(`(?i)\bexperiencia\b`),
	regexp.MustCompile(`(?i)\brequisitos\b`),
	regexp.MustCompile(`(?i)\bresponsabilidades\b`),
	regexp.MustCompile(`(?i)\bofrecemos\b`),
	regexp.MustCompile(`(?i)\bcientífico de datos\b`),
	regexp.MustCompile(`(?i)\bingeniero\b`),
	regexp.MustCompile(`(?i)\banalista\b`),
	regexp.MustCompile(`(?i)\bcerquem\b`),
	regexp.MustCompile(`(?i)\bfeina\b`),
}

// IsBarcelonaRole reports whether the posting is Barcelona-based. Handles
// "Barcelona", "Barcelona, Spain", "Remote - Spain", "Hybrid - Barcelona".
func IsBarcelonaRole(location, title, description string) bool {
	text := strings.ToLower(location + " " + title + " " + description)
	for _, re := range barcelonaPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// IsDataRole reports whether the posting is data-related. Broad filter for
// high recall; no exclusion list at this stage.
func IsDataRole(title, description string) bool {
	text := strings.ToLower(title + " " + description)
	for _, kw := range dataRoleKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// IsGreatFit reports whether the posting is a core DS/ML/AI role. Stricter
// than IsDataRole: title decides, description is only a tiebreaker.
func IsGreatFit(title, description string) bool {
	lt := strings.ToLower(title)

	for _, ex := range greatFitExclusions {
		if strings.Contains(lt, ex) {
			return false
		}
	}
	for _, kw := range greatFitKeywords {
		if strings.Contains(lt, kw) {
			return true
		}
	}

	if description != "" {
		ld := strings.ToLower(description)
		for _, signal := range []string{"data scientist", "machine learning engineer", "ml engineer", "data analyst"} {
			if strings.Contains(ld, signal) {
				return true
			}
		}
	}
	return false
}

// IsEnglishPosting gates out Spanish/Catalan postings. Counts non-English
// marker patterns; fewer than 3 distinct hits passes. A heuristic, not a
// language detector: keep the threshold as-is.
func IsEnglishPosting(title, description string) bool {
	text := strings.ToLower(title + " " + description)

	count := 0
	for _, re := range nonEnglishPatterns {
		if re.MatchString(text) {
			count++
		}
	}
	return count < 3
}

// DetectVisaMentions returns (mentionsVisa, mentionsRelocation). The two
// signals come from disjoint keyword sets and are independent of each other.
func DetectVisaMentions(description string) (bool, bool) {
	text := strings.ToLower(description)

	visa := false
	for _, kw := range visaKeywords {
		if strings.Contains(text, kw) {
			visa = true
			break
		}
	}
	reloc := false
	for _, kw := range relocationKeywords {
		if strings.Contains(text, kw) {
			reloc = true
			break
		}
	}
	return visa, reloc
}

// InferWorkMode classifies remote/hybrid/onsite from the combined text.
// Ordered rule: "hybrid" overrides "remote" when both appear.
func InferWorkMode(location, title, description string) string {
	blob := strings.ToLower(location + " " + title + " " + description)

	if strings.Contains(blob, "remote") {
		if strings.Contains(blob, "hybrid") {
			return "hybrid"
		}
		return "remote"
	}
	switch {
	case strings.Contains(blob, "hybrid"):
		return "hybrid"
	case strings.Contains(blob, "on-site") || strings.Contains(blob, "onsite") || strings.Contains(blob, "on site"):
		return "onsite"
	default:
		return "unknown"
	}
}
