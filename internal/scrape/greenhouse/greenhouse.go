// Package greenhouse reads a company's public Greenhouse board via the
// boards-api JSON endpoint.
package greenhouse

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
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

// New builds a fetcher for one company; PlatformID is the board token from
// boards.greenhouse.io/<token>.
func New(co domain.Company, hc *http.Client, limiter *util.HostLimiter) *Scraper {
	return &Scraper{co: co, hc: hc, limiter: limiter}
}

func (s *Scraper) Name() string { return "greenhouse:" + s.co.ID }

type boardJob struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	AbsoluteURL string `json:"absolute_url"`
	UpdatedAt   string `json:"updated_at"`
	Content     string `json:"content"` // HTML, entity-escaped
	Location    struct {
		Name string `json:"name"`
	} `json:"location"`
	Departments []struct {
		Name string `json:"name"`
	} `json:"departments"`
}

func (s *Scraper) Fetch(ctx context.Context) (types.ScrapeResult, error) {
	apiURL := fmt.Sprintf("https://boards-api.greenhouse.io/v1/boards/%s/jobs?content=true", s.co.PlatformID)

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	req.Header.Set("User-Agent", util.UserAgent)

	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, apiURL); err != nil {
			return types.ScrapeResult{Source: s.Name()}, err
		}
	}
	res, err := s.hc.Do(req)
	if err != nil {
		return types.ScrapeResult{Source: s.Name()}, fmt.Errorf("greenhouse get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return types.ScrapeResult{Source: s.Name()}, fmt.Errorf("greenhouse status %d", res.StatusCode)
	}

	var payload struct {
		Jobs []boardJob `json:"jobs"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return types.ScrapeResult{Source: s.Name()}, fmt.Errorf("greenhouse decode: %w", err)
	}

	var out []domain.Job
	for _, p := range payload.Jobs {
		title := strings.TrimSpace(p.Title)
		if title == "" || p.AbsoluteURL == "" {
			continue
		}

		description := util.HTMLToText(html.UnescapeString(p.Content))
		if !classify.IsEnglishPosting(title, description) {
			continue
		}

		department := ""
		if len(p.Departments) > 0 {
			department = p.Departments[0].Name
		}

		job := domain.Job{
			CompanyID:   s.co.ID,
			Title:       title,
			URL:         util.CanonicalizeURL(p.AbsoluteURL),
			Location:    util.NormalizeLocation(p.Location.Name),
			Department:  department,
			PostedDate:  util.NormalizeDate(p.UpdatedAt),
			Description: description,
		}
		classify.Annotate(&job)
		if classify.Matches(job) {
			out = append(out, job)
		}
	}

	log.Printf("[greenhouse] company=%s matched=%d of=%d", s.co.ID, len(out), len(payload.Jobs))
	return types.ScrapeResult{Source: s.Name(), Jobs: out}, nil
}
