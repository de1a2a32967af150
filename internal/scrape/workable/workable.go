// Package workable reads a company's public Workable board. The listing is a
// POST endpoint; descriptions come from a per-job detail POST.
package workable

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

const apiBase = "https://apply.workable.com/api/v3/accounts"

type Scraper struct {
	co      domain.Company
	hc      *http.Client
	limiter *util.HostLimiter
}

// New builds a fetcher for one company; PlatformID is the subdomain from
// apply.workable.com/<subdomain>.
func New(co domain.Company, hc *http.Client, limiter *util.HostLimiter) *Scraper {
	return &Scraper{co: co, hc: hc, limiter: limiter}
}

func (s *Scraper) Name() string { return "workable:" + s.co.ID }

type listing struct {
	Title       string          `json:"title"`
	Shortcode   string          `json:"shortcode"`
	PublishedOn string          `json:"published_on"`
	Location    json.RawMessage `json:"location"`
	Department  json.RawMessage `json:"department"`
}

func (s *Scraper) Fetch(ctx context.Context) (types.ScrapeResult, error) {
	listURL := fmt.Sprintf("%s/%s/jobs", apiBase, s.co.PlatformID)

	var payload struct {
		Results []listing `json:"results"`
	}
	if err := s.postJSON(ctx, listURL, &payload); err != nil {
		return types.ScrapeResult{Source: s.Name()}, err
	}

	var out []domain.Job
	for _, p := range payload.Results {
		title := strings.TrimSpace(p.Title)
		if title == "" || p.Shortcode == "" {
			continue
		}

		description := s.fetchDescription(ctx, p.Shortcode)
		if !classify.IsEnglishPosting(title, description) {
			continue
		}

		job := domain.Job{
			CompanyID:   s.co.ID,
			Title:       title,
			URL:         fmt.Sprintf("https://apply.workable.com/%s/j/%s/", s.co.PlatformID, p.Shortcode),
			Location:    util.NormalizeLocation(flexLocation(p.Location)),
			Department:  flexJoin(p.Department),
			PostedDate:  util.NormalizeDate(p.PublishedOn),
			Description: description,
		}
		classify.Annotate(&job)
		if classify.Matches(job) {
			out = append(out, job)
		}
	}

	log.Printf("[workable] company=%s matched=%d of=%d", s.co.ID, len(out), len(payload.Results))
	return types.ScrapeResult{Source: s.Name(), Jobs: out}, nil
}

// fetchDescription is best-effort: a missing description never fails the run.
func (s *Scraper) fetchDescription(ctx context.Context, shortcode string) string {
	detailURL := fmt.Sprintf("%s/%s/jobs/%s", apiBase, s.co.PlatformID, shortcode)

	var detail struct {
		Description string `json:"description"`
	}
	if err := s.postJSON(ctx, detailURL, &detail); err != nil {
		log.Printf("[workable] company=%s shortcode=%s detail err=%v", s.co.ID, shortcode, err)
		return ""
	}
	return util.HTMLToText(detail.Description)
}

func (s *Scraper) postJSON(ctx context.Context, url string, into any) error {
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader("{}"))
	req.Header.Set("User-Agent", util.UserAgent)
	req.Header.Set("Content-Type", "application/json")

	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, url); err != nil {
			return err
		}
	}
	res, err := s.hc.Do(req)
	if err != nil {
		return fmt.Errorf("workable post: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return fmt.Errorf("workable status %d", res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(into); err != nil {
		return fmt.Errorf("workable decode: %w", err)
	}
	return nil
}

// flexLocation handles both shapes the listing endpoint returns: an object
// with city/country, or a bare string.
func flexLocation(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var obj struct {
		City    string `json:"city"`
		Country string `json:"country"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && (obj.City != "" || obj.Country != "") {
		return util.JoinNonEmpty(obj.City, obj.Country)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

// flexJoin handles a department that is either a string or a list.
func flexJoin(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, ", ")
	}
	return ""
}
