// Package email turns inbox job-alert mails into job candidates for
// companies without a scrapeable board. Senders and link patterns come from
// the company registry.
package email

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"jobradar-engine/internal/classify"
	"jobradar-engine/internal/domain"
	"jobradar-engine/internal/scrape/types"
	"jobradar-engine/internal/scrape/util"
)

// Options carries the resolved mailbox settings. Empty credentials disable
// the lane; that is a normal state, not a misconfiguration.
type Options struct {
	Addr     string // host:port
	Username string
	Password string
	Mailbox  string
	DaysBack int
}

type Scraper struct {
	co      domain.Company
	opts    Options
	limiter *util.HostLimiter
}

func New(co domain.Company, opts Options, limiter *util.HostLimiter) *Scraper {
	return &Scraper{co: co, opts: opts, limiter: limiter}
}

func (s *Scraper) Name() string { return "email:" + s.co.ID }

// anchor texts that are buttons, never titles
var genericTitles = map[string]bool{
	"view job":     true,
	"apply":        true,
	"learn more":   true,
	"see all jobs": true,
	"view all":     true,
}

var placePatterns = []string{"Barcelona", "Sant Cugat", "Spain", "Madrid", "Remote", "Hybrid"}

var placePhrase = regexp.MustCompile(`([A-Za-z\s,]+(?:Spain|Barcelona|Madrid|Sant Cugat|Remote)[A-Za-z\s,]*)`)

func (s *Scraper) Fetch(ctx context.Context) (types.ScrapeResult, error) {
	empty := types.ScrapeResult{Source: s.Name()}

	if s.opts.Username == "" || s.opts.Password == "" {
		log.Printf("[email] mailbox credentials not configured, skipping %s", s.co.ID)
		return empty, nil
	}
	if len(s.co.EmailSenders) == 0 {
		log.Printf("[email] no senders configured for %s", s.co.ID)
		return empty, nil
	}

	linkPattern, err := s.compileLinkPattern()
	if err != nil {
		return empty, err
	}

	host := s.opts.Addr
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	if s.limiter != nil {
		if err := s.limiter.WaitHost(ctx, host); err != nil {
			return empty, err
		}
	}

	c, err := dialAndLogin(ctx, s.opts.Addr, s.opts.Username, s.opts.Password)
	if err != nil {
		if errors.Is(err, errLoginFailed) {
			log.Printf("[email] authentication failed, skipping %s: %v", s.co.ID, err)
			return empty, nil
		}
		return empty, err
	}
	defer logoutAndClose(c)

	if err := selectMailbox(c, s.opts.Mailbox); err != nil {
		return empty, err
	}

	daysBack := s.opts.DaysBack
	if daysBack <= 0 {
		daysBack = 7
	}
	since := time.Now().AddDate(0, 0, -daysBack)

	var jobs []domain.Job
	for _, sender := range s.co.EmailSenders {
		uids, err := searchSender(c, sender, since)
		if err != nil {
			log.Printf("[email] company=%s sender=%s search err=%v", s.co.ID, sender, err)
			continue
		}
		msgs, err := fetchMessages(ctx, c, uids)
		if err != nil {
			log.Printf("[email] company=%s sender=%s fetch err=%v", s.co.ID, sender, err)
			continue
		}
		for _, m := range msgs {
			jobs = append(jobs, s.parseAlert(m, linkPattern)...)
		}
	}

	// the same posting often arrives via several senders
	seen := map[string]bool{}
	var out []domain.Job
	for _, job := range jobs {
		if seen[job.URL] {
			continue
		}
		seen[job.URL] = true
		if classify.Matches(job) {
			out = append(out, job)
		}
	}

	log.Printf("[email] company=%s matched=%d of=%d", s.co.ID, len(out), len(seen))
	return types.ScrapeResult{Source: s.Name(), Jobs: out}, nil
}

// compileLinkPattern joins the registry URL patterns into one alternation;
// with no patterns configured the company id itself is the filter.
func (s *Scraper) compileLinkPattern() (*regexp.Regexp, error) {
	pattern := strings.Join(s.co.EmailURLPatterns, "|")
	if pattern == "" {
		pattern = regexp.QuoteMeta(s.co.ID)
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("email url patterns for %s: %w", s.co.ID, err)
	}
	return re, nil
}

func (s *Scraper) parseAlert(m message, linkPattern *regexp.Regexp) []domain.Job {
	body := extractBody(m.raw)
	if body == "" {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil
	}

	arrival := m.date
	if arrival.IsZero() {
		arrival = time.Now()
	}
	postedDate := arrival.UTC().Format(util.DateLayout)

	var jobs []domain.Job
	doc.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		if href == "" || !linkPattern.MatchString(href) {
			return
		}
		low := strings.ToLower(href)
		if strings.Contains(low, "unsubscribe") || strings.Contains(low, "privacy") {
			return
		}

		title := util.CleanText(link.Text())
		if len(title) < 5 {
			// the anchor is an image or button; look for a heading nearby
			parent := link.Closest("tr, div, td")
			if parent.Length() == 0 {
				return
			}
			heading := parent.Find("h2, h3, h4, strong, b").First()
			if heading.Length() == 0 {
				return
			}
			title = util.CleanText(heading.Text())
		}
		if title == "" || genericTitles[strings.ToLower(title)] {
			return
		}

		location := locationNearLink(link)
		job := domain.Job{
			CompanyID:  s.co.ID,
			Title:      title,
			URL:        util.StripQuery(href),
			Location:   location,
			PostedDate: postedDate, // arrival date stands in for the post date
		}
		if job.Location == "" {
			job.Location = "Unknown"
		}
		classify.Annotate(&job)
		jobs = append(jobs, job)
	})
	return jobs
}

// locationNearLink scans the link's enclosing row or cell for a known place
// name and pulls out the phrase around it.
func locationNearLink(link *goquery.Selection) string {
	parent := link.Closest("tr, div, td, li")
	if parent.Length() == 0 {
		return ""
	}
	text := parent.Text()

	for _, place := range placePatterns {
		if !containsFold(text, place) {
			continue
		}
		if m := placePhrase.FindString(text); m != "" {
			return util.CleanText(m)
		}
		return place
	}
	return ""
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
