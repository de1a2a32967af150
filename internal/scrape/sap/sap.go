// Package sap scrapes the jobs.sap.com careers search, which has no public
// JSON API. Several data-flavored search terms are swept and the result rows
// parsed out of the HTML.
package sap

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"jobradar-engine/internal/classify"
	"jobradar-engine/internal/domain"
	"jobradar-engine/internal/scrape/types"
	"jobradar-engine/internal/scrape/util"
)

const baseURL = "https://jobs.sap.com"

var searchTerms = []string{"data", "machine learning", "AI", "analyst", "scientist"}

type Scraper struct {
	co      domain.Company
	hc      *http.Client
	limiter *util.HostLimiter
}

func New(co domain.Company, hc *http.Client, limiter *util.HostLimiter) *Scraper {
	return &Scraper{co: co, hc: hc, limiter: limiter}
}

func (s *Scraper) Name() string { return "sap:" + s.co.ID }

type row struct {
	title    string
	href     string
	location string
	posted   string
}

func (s *Scraper) Fetch(ctx context.Context) (types.ScrapeResult, error) {
	var rows []row
	failures := 0

	for _, term := range searchTerms {
		found, err := s.search(ctx, term)
		if err != nil {
			log.Printf("[sap] company=%s term=%q err=%v", s.co.ID, term, err)
			failures++
			continue
		}
		rows = append(rows, found...)
	}
	if failures == len(searchTerms) {
		return types.ScrapeResult{Source: s.Name()}, fmt.Errorf("sap: all %d searches failed", failures)
	}

	// same posting shows up under several terms
	seen := map[string]bool{}
	today := time.Now().UTC().Format(util.DateLayout)

	var out []domain.Job
	for _, r := range rows {
		if r.title == "" || r.href == "" || seen[r.href] {
			continue
		}
		seen[r.href] = true

		posted := util.NormalizeDate(r.posted)
		if posted == "" {
			posted = today
		}

		job := domain.Job{
			CompanyID:  s.co.ID,
			Title:      r.title,
			URL:        r.href,
			Location:   util.NormalizeLocation(r.location),
			PostedDate: posted,
		}
		classify.Annotate(&job)
		if classify.Matches(job) {
			out = append(out, job)
		}
	}

	log.Printf("[sap] company=%s matched=%d of=%d", s.co.ID, len(out), len(seen))
	return types.ScrapeResult{Source: s.Name(), Jobs: out}, nil
}

func (s *Scraper) search(ctx context.Context, term string) ([]row, error) {
	q := url.Values{}
	q.Set("q", term)
	q.Set("locationsearch", "barcelona")
	q.Set("locale", "en_US")
	searchURL := baseURL + "/search/?" + q.Encode()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	req.Header.Set("User-Agent", util.UserAgent)

	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, searchURL); err != nil {
			return nil, err
		}
	}
	res, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sap get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("sap status %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("sap parse: %w", err)
	}

	var rows []row
	doc.Find("tr.data-row").Each(func(_ int, tr *goquery.Selection) {
		link := tr.Find("a.jobTitle-link").First()
		title := util.CleanText(link.Text())
		href, _ := link.Attr("href")
		if title == "" || href == "" {
			return
		}
		if !strings.HasPrefix(href, "http") {
			href = baseURL + href
		}
		rows = append(rows, row{
			title:    title,
			href:     href,
			location: util.CleanText(tr.Find("span.jobLocation").First().Text()),
			posted:   util.CleanText(tr.Find("span.jobDate").First().Text()),
		})
	})
	return rows, nil
}
