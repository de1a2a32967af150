// Package ashby reads a company's public Ashby board via the posting-api
// job-board endpoint.
package ashby

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
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

// New builds a fetcher for one company; PlatformID is the org slug from
// jobs.ashbyhq.com/<org>.
func New(co domain.Company, hc *http.Client, limiter *util.HostLimiter) *Scraper {
	return &Scraper{co: co, hc: hc, limiter: limiter}
}

func (s *Scraper) Name() string { return "ashby:" + s.co.ID }

type boardJob struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Location         string `json:"location"`
	Department       string `json:"department"`
	PublishedAt      string `json:"publishedAt"`
	DescriptionPlain string `json:"descriptionPlain"`
	Description      string `json:"description"` // html fallback
}

func (s *Scraper) Fetch(ctx context.Context) (types.ScrapeResult, error) {
	apiURL := fmt.Sprintf("https://api.ashbyhq.com/posting-api/job-board/%s", s.co.PlatformID)

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	req.Header.Set("User-Agent", util.UserAgent)

	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, apiURL); err != nil {
			return types.ScrapeResult{Source: s.Name()}, err
		}
	}
	res, err := s.hc.Do(req)
	if err != nil {
		return types.ScrapeResult{Source: s.Name()}, fmt.Errorf("ashby get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return types.ScrapeResult{Source: s.Name()}, fmt.Errorf("ashby status %d", res.StatusCode)
	}

	var payload struct {
		Jobs []boardJob `json:"jobs"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return types.ScrapeResult{Source: s.Name()}, fmt.Errorf("ashby decode: %w", err)
	}

	var out []domain.Job
	for _, p := range payload.Jobs {
		title := strings.TrimSpace(p.Title)
		if title == "" || p.ID == "" {
			continue
		}

		description := p.DescriptionPlain
		if description == "" {
			description = util.HTMLToText(p.Description)
		}
		if !classify.IsEnglishPosting(title, description) {
			continue
		}

		job := domain.Job{
			CompanyID:   s.co.ID,
			Title:       title,
			URL:         fmt.Sprintf("https://jobs.ashbyhq.com/%s/%s", s.co.PlatformID, p.ID),
			Location:    util.NormalizeLocation(p.Location),
			Department:  p.Department,
			PostedDate:  util.NormalizeDate(p.PublishedAt),
			Description: description,
		}
		classify.Annotate(&job)
		if classify.Matches(job) {
			out = append(out, job)
		}
	}

	log.Printf("[ashby] company=%s matched=%d of=%d", s.co.ID, len(out), len(payload.Jobs))
	return types.ScrapeResult{Source: s.Name(), Jobs: out}, nil
}
