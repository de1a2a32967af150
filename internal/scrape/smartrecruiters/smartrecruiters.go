// Package smartrecruiters reads a company's public SmartRecruiters postings.
// The listing paginates by offset; descriptions come from a per-job detail
// endpoint (jobAd sections).
package smartrecruiters

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

const (
	apiBase  = "https://api.smartrecruiters.com/v1/companies"
	pageSize = 100
	maxJobs  = 500
)

type Scraper struct {
	co      domain.Company
	hc      *http.Client
	limiter *util.HostLimiter
}

// New builds a fetcher for one company; PlatformID is the company identifier
// from jobs.smartrecruiters.com/<identifier>.
func New(co domain.Company, hc *http.Client, limiter *util.HostLimiter) *Scraper {
	return &Scraper{co: co, hc: hc, limiter: limiter}
}

func (s *Scraper) Name() string { return "smartrecruiters:" + s.co.ID }

type posting struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ReleasedDate string `json:"releasedDate"`
	Location     struct {
		City    string `json:"city"`
		Country string `json:"country"`
	} `json:"location"`
	Department struct {
		Label string `json:"label"`
	} `json:"department"`
}

type listPage struct {
	TotalFound int       `json:"totalFound"`
	Content    []posting `json:"content"`
}

func (s *Scraper) Fetch(ctx context.Context) (types.ScrapeResult, error) {
	var postings []posting
	total := -1

	for offset := 0; offset < maxJobs; offset += pageSize {
		pageURL := fmt.Sprintf("%s/%s/postings?limit=%d&offset=%d", apiBase, s.co.PlatformID, pageSize, offset)

		var page listPage
		if err := s.getJSON(ctx, pageURL, &page); err != nil {
			if offset == 0 {
				return types.ScrapeResult{Source: s.Name()}, err
			}
			log.Printf("[smartrecruiters] company=%s page offset=%d err=%v", s.co.ID, offset, err)
			break
		}

		// only the first page's total is trusted
		if total < 0 {
			total = page.TotalFound
		}
		if len(page.Content) == 0 {
			break
		}
		postings = append(postings, page.Content...)
		if len(postings) >= total {
			break
		}
	}

	var out []domain.Job
	for _, p := range postings {
		title := strings.TrimSpace(p.Name)
		if title == "" || p.ID == "" {
			continue
		}

		description := s.fetchDescription(ctx, p.ID)
		if !classify.IsEnglishPosting(title, description) {
			continue
		}

		job := domain.Job{
			CompanyID:   s.co.ID,
			Title:       title,
			URL:         fmt.Sprintf("https://jobs.smartrecruiters.com/%s/%s", s.co.PlatformID, p.ID),
			Location:    util.JoinNonEmpty(p.Location.City, p.Location.Country),
			Department:  p.Department.Label,
			PostedDate:  util.NormalizeDate(p.ReleasedDate),
			Description: description,
		}
		classify.Annotate(&job)
		if classify.Matches(job) {
			out = append(out, job)
		}
	}

	log.Printf("[smartrecruiters] company=%s matched=%d of=%d", s.co.ID, len(out), len(postings))
	return types.ScrapeResult{Source: s.Name(), Jobs: out}, nil
}

// fetchDescription joins the jobAd sections; best-effort.
func (s *Scraper) fetchDescription(ctx context.Context, id string) string {
	detailURL := fmt.Sprintf("%s/%s/postings/%s", apiBase, s.co.PlatformID, id)

	var detail struct {
		JobAd struct {
			Sections struct {
				JobDescription        section `json:"jobDescription"`
				Qualifications        section `json:"qualifications"`
				AdditionalInformation section `json:"additionalInformation"`
			} `json:"sections"`
		} `json:"jobAd"`
	}
	if err := s.getJSON(ctx, detailURL, &detail); err != nil {
		log.Printf("[smartrecruiters] company=%s posting=%s detail err=%v", s.co.ID, id, err)
		return ""
	}

	sec := detail.JobAd.Sections
	parts := make([]string, 0, 3)
	for _, txt := range []string{sec.JobDescription.Text, sec.Qualifications.Text, sec.AdditionalInformation.Text} {
		if txt != "" {
			parts = append(parts, txt)
		}
	}
	return util.HTMLToText(strings.Join(parts, " "))
}

type section struct {
	Text string `json:"text"`
}

func (s *Scraper) getJSON(ctx context.Context, url string, into any) error {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	req.Header.Set("User-Agent", util.UserAgent)

	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, url); err != nil {
			return err
		}
	}
	res, err := s.hc.Do(req)
	if err != nil {
		return fmt.Errorf("smartrecruiters get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return fmt.Errorf("smartrecruiters status %d", res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(into); err != nil {
		return fmt.Errorf("smartrecruiters decode: %w", err)
	}
	return nil
}
