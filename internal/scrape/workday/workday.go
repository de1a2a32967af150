// Package workday reads a company's myworkdayjobs.com board. The jobs API
// wants a browser-ish session: a GET on the board page seeds the cookie
// jar and the CALYPSO_CSRF_TOKEN cookie, then paginated POSTs list jobs.
package workday

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"jobradar-engine/internal/classify"
	"jobradar-engine/internal/domain"
	"jobradar-engine/internal/scrape/types"
	"jobradar-engine/internal/scrape/util"
)

const (
	// the API rejects larger page sizes
	pageLimit = 20
	maxJobs   = 500
)

type Scraper struct {
	co      domain.Company
	hc      *http.Client
	limiter *util.HostLimiter
}

// New builds a fetcher for one company; PlatformID is "tenant/instance/site",
// e.g. "mango/wd3/Mango_Work_Your_Passion".
func New(co domain.Company, hc *http.Client, limiter *util.HostLimiter) *Scraper {
	return &Scraper{co: co, hc: hc, limiter: limiter}
}

func (s *Scraper) Name() string { return "workday:" + s.co.ID }

type listRequest struct {
	AppliedFacets map[string]any `json:"appliedFacets"`
	Limit         int            `json:"limit"`
	Offset        int            `json:"offset"`
	SearchText    string         `json:"searchText"`
}

type listResponse struct {
	Total       int       `json:"total"`
	JobPostings []posting `json:"jobPostings"`
}

type posting struct {
	Title        string   `json:"title"`
	ExternalPath string   `json:"externalPath"`
	BulletFields []string `json:"bulletFields"`
	TimeType     string   `json:"timeType"`
}

func (s *Scraper) Fetch(ctx context.Context) (types.ScrapeResult, error) {
	tenant, instance, site, err := splitPlatformID(s.co.PlatformID)
	if err != nil {
		return types.ScrapeResult{Source: s.Name()}, err
	}

	baseURL := fmt.Sprintf("https://%s.%s.myworkdayjobs.com", tenant, instance)
	boardURL := fmt.Sprintf("%s/en-US/%s", baseURL, site)
	apiURL := fmt.Sprintf("%s/wday/cxs/%s/%s/jobs", baseURL, tenant, site)

	// per-run client with a jar so the session cookies persist across pages
	jar, _ := cookiejar.New(nil)
	hc := &http.Client{Jar: jar, Timeout: s.hc.Timeout, Transport: s.hc.Transport}

	csrf, err := s.bootstrap(ctx, hc, boardURL)
	if err != nil {
		return types.ScrapeResult{Source: s.Name()}, err
	}
	if csrf == "" {
		log.Printf("[workday] company=%s no csrf token, trying without", s.co.ID)
	}

	var postings []posting
	total := -1

	for offset := 0; offset < maxJobs; offset += pageLimit {
		page, err := s.fetchPage(ctx, hc, apiURL, boardURL, csrf, offset)
		if err != nil {
			if offset == 0 {
				return types.ScrapeResult{Source: s.Name()}, err
			}
			log.Printf("[workday] company=%s page offset=%d err=%v", s.co.ID, offset, err)
			break
		}

		// only the first response carries an accurate total
		if total < 0 {
			total = page.Total
		}
		if len(page.JobPostings) == 0 {
			break
		}
		postings = append(postings, page.JobPostings...)
		if len(postings) >= total {
			break
		}
	}

	// the list endpoint has no posting date; discovery day stands in
	today := time.Now().UTC().Format(util.DateLayout)

	var out []domain.Job
	for _, p := range postings {
		title := strings.TrimSpace(p.Title)
		if title == "" || p.ExternalPath == "" {
			continue
		}

		location := ""
		if len(p.BulletFields) > 0 {
			location = p.BulletFields[0]
			if len(p.BulletFields) > 1 {
				location = p.BulletFields[0] + ", " + p.BulletFields[1]
			}
		}

		job := domain.Job{
			CompanyID:  s.co.ID,
			Title:      title,
			URL:        boardURL + p.ExternalPath,
			Location:   util.NormalizeLocation(location),
			PostedDate: today,
		}
		classify.Annotate(&job)
		if classify.Matches(job) {
			out = append(out, job)
		}
	}

	log.Printf("[workday] company=%s matched=%d of=%d", s.co.ID, len(out), len(postings))
	return types.ScrapeResult{Source: s.Name(), Jobs: out}, nil
}

func (s *Scraper) bootstrap(ctx context.Context, hc *http.Client, boardURL string) (string, error) {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, boardURL, nil)
	req.Header.Set("User-Agent", util.UserAgent)
	req.Header.Set("Accept-Language", "en-US")

	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, boardURL); err != nil {
			return "", err
		}
	}
	res, err := hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("workday bootstrap: %w", err)
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)
	if res.StatusCode >= 400 {
		return "", fmt.Errorf("workday bootstrap status %d", res.StatusCode)
	}

	for _, c := range res.Cookies() {
		if c.Name == "CALYPSO_CSRF_TOKEN" && c.Value != "" {
			return c.Value, nil
		}
	}
	// some tenants set it on a redirect hop; check the jar too
	u, _ := url.Parse(boardURL)
	for _, c := range hc.Jar.Cookies(u) {
		if c.Name == "CALYPSO_CSRF_TOKEN" && c.Value != "" {
			return c.Value, nil
		}
	}
	return "", nil
}

func (s *Scraper) fetchPage(ctx context.Context, hc *http.Client, apiURL, boardURL, csrf string, offset int) (listResponse, error) {
	var page listResponse

	body, _ := json.Marshal(listRequest{
		AppliedFacets: map[string]any{},
		Limit:         pageLimit,
		Offset:        offset,
		SearchText:    "",
	})

	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	req.Header.Set("User-Agent", util.UserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Referer", boardURL)
	if csrf != "" {
		req.Header.Set("X-CALYPSO-CSRF-TOKEN", csrf)
	}

	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, apiURL); err != nil {
			return page, err
		}
	}
	res, err := hc.Do(req)
	if err != nil {
		return page, fmt.Errorf("workday post jobs: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return page, fmt.Errorf("workday status %d", res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(&page); err != nil {
		return page, fmt.Errorf("workday decode: %w", err)
	}
	return page, nil
}

func splitPlatformID(id string) (tenant, instance, site string, err error) {
	parts := strings.Split(id, "/")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", fmt.Errorf("workday platform id %q: want tenant/instance/site", id)
	}
	return parts[0], parts[1], parts[2], nil
}
