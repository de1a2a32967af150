// Package amazon reads the amazon.jobs search API for one city.
package amazon

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"jobradar-engine/internal/classify"
	"jobradar-engine/internal/domain"
	"jobradar-engine/internal/scrape/types"
	"jobradar-engine/internal/scrape/util"
)

type Scraper struct {
	co      domain.Company
	hc      *http.Client
	limiter *util.HostLimiter
}

// New builds a fetcher for the Amazon job search; PlatformID is the city to
// search (defaults to Barcelona).
func New(co domain.Company, hc *http.Client, limiter *util.HostLimiter) *Scraper {
	return &Scraper{co: co, hc: hc, limiter: limiter}
}

func (s *Scraper) Name() string { return "amazon:" + s.co.ID }

type searchJob struct {
	Title                   string `json:"title"`
	City                    string `json:"city"`
	Location                string `json:"location"`
	NormalizedLocation      string `json:"normalized_location"`
	JobPath                 string `json:"job_path"`
	JobCategory             string `json:"job_category"`
	BusinessCategory        string `json:"business_category"`
	PostedDate              string `json:"posted_date"` // "January 13, 2026"
	DescriptionShort        string `json:"description_short"`
	BasicQualifications     string `json:"basic_qualifications"`
	PreferredQualifications string `json:"preferred_qualifications"`
}

func (s *Scraper) Fetch(ctx context.Context) (types.ScrapeResult, error) {
	city := s.co.PlatformID
	if city == "" {
		city = "Barcelona"
	}

	q := url.Values{}
	q.Set("city", city)
	q.Set("country", "ESP")
	q.Set("offset", "0")
	q.Set("result_limit", "100")
	q.Set("sort", "recent")
	apiURL := "https://www.amazon.jobs/en/search.json?" + q.Encode()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	req.Header.Set("User-Agent", util.UserAgent)

	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, apiURL); err != nil {
			return types.ScrapeResult{Source: s.Name()}, err
		}
	}
	res, err := s.hc.Do(req)
	if err != nil {
		return types.ScrapeResult{Source: s.Name()}, fmt.Errorf("amazon get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return types.ScrapeResult{Source: s.Name()}, fmt.Errorf("amazon status %d", res.StatusCode)
	}

	var payload struct {
		Jobs []searchJob `json:"jobs"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return types.ScrapeResult{Source: s.Name()}, fmt.Errorf("amazon decode: %w", err)
	}

	var out []domain.Job
	for _, p := range payload.Jobs {
		title := strings.TrimSpace(p.Title)
		if title == "" || p.JobPath == "" {
			continue
		}

		description := joinParagraphs(p.DescriptionShort, p.BasicQualifications, p.PreferredQualifications)
		if !classify.IsEnglishPosting(title, description) {
			continue
		}

		location := p.NormalizedLocation
		if location == "" {
			location = p.Location
		}
		department := p.JobCategory
		if department == "" {
			department = p.BusinessCategory
		}

		job := domain.Job{
			CompanyID:   s.co.ID,
			Title:       title,
			URL:         "https://www.amazon.jobs" + p.JobPath,
			Location:    util.NormalizeLocation(location),
			Department:  department,
			PostedDate:  util.NormalizeDate(p.PostedDate),
			Description: description,
		}
		classify.Annotate(&job)
		// the search location field often omits the city itself
		if !job.IsBarcelona && strings.Contains(strings.ToLower(p.City), "barcelona") {
			job.IsBarcelona = true
		}
		if classify.Matches(job) {
			out = append(out, job)
		}
	}

	log.Printf("[amazon] company=%s matched=%d of=%d", s.co.ID, len(out), len(payload.Jobs))
	return types.ScrapeResult{Source: s.Name(), Jobs: out}, nil
}

func joinParagraphs(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n\n")
}
