// Package lever reads a company's public Lever board via the v0 postings API.
package lever

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

// New builds a fetcher for one company; PlatformID is the slug from
// jobs.lever.co/<slug>.
func New(co domain.Company, hc *http.Client, limiter *util.HostLimiter) *Scraper {
	return &Scraper{co: co, hc: hc, limiter: limiter}
}

func (s *Scraper) Name() string { return "lever:" + s.co.ID }

type posting struct {
	ID         string `json:"id"`
	Text       string `json:"text"` // title
	HostedURL  string `json:"hostedUrl"`
	CreatedAt  int64  `json:"createdAt"` // ms epoch
	Categories struct {
		Location string `json:"location"`
		Team     string `json:"team"`
	} `json:"categories"`
	DescriptionPlain string `json:"descriptionPlain"`
	Description      string `json:"description"` // html fallback
}

func (s *Scraper) Fetch(ctx context.Context) (types.ScrapeResult, error) {
	apiURL := fmt.Sprintf("https://api.lever.co/v0/postings/%s?mode=json", s.co.PlatformID)

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	req.Header.Set("User-Agent", util.UserAgent)

	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, apiURL); err != nil {
			return types.ScrapeResult{Source: s.Name()}, err
		}
	}
	res, err := s.hc.Do(req)
	if err != nil {
		return types.ScrapeResult{Source: s.Name()}, fmt.Errorf("lever get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return types.ScrapeResult{Source: s.Name()}, fmt.Errorf("lever status %d", res.StatusCode)
	}

	var postings []posting
	if err := json.NewDecoder(res.Body).Decode(&postings); err != nil {
		return types.ScrapeResult{Source: s.Name()}, fmt.Errorf("lever decode: %w", err)
	}

	var out []domain.Job
	for _, p := range postings {
		title := strings.TrimSpace(p.Text)
		if title == "" || p.HostedURL == "" {
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
			URL:         util.CanonicalizeURL(p.HostedURL),
			Location:    util.NormalizeLocation(p.Categories.Location),
			Department:  p.Categories.Team,
			PostedDate:  util.DateFromMillis(p.CreatedAt),
			Description: description,
		}
		classify.Annotate(&job)
		if classify.Matches(job) {
			out = append(out, job)
		}
	}

	log.Printf("[lever] company=%s matched=%d of=%d", s.co.ID, len(out), len(postings))
	return types.ScrapeResult{Source: s.Name(), Jobs: out}, nil
}
