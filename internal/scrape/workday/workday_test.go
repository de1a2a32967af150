package workday

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"jobradar-engine/internal/domain"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func testClient(srv *httptest.Server) *http.Client {
	return &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			req.URL.Scheme = "http"
			req.URL.Host = srv.Listener.Addr().String()
			return http.DefaultTransport.RoundTrip(req)
		}),
	}
}

func TestSplitPlatformID(t *testing.T) {
	tenant, instance, site, err := splitPlatformID("mango/wd3/Mango_Work_Your_Passion")
	require.NoError(t, err)
	require.Equal(t, "mango", tenant)
	require.Equal(t, "wd3", instance)
	require.Equal(t, "Mango_Work_Your_Passion", site)

	_, _, _, err = splitPlatformID("mango")
	require.Error(t, err)
	_, _, _, err = splitPlatformID("mango//site")
	require.Error(t, err)
}

func TestFetchSessionAndPagination(t *testing.T) {
	var sawCSRF string
	var pages int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			// board page seeds the session cookie
			http.SetCookie(w, &http.Cookie{Name: "CALYPSO_CSRF_TOKEN", Value: "tok123", Path: "/"})
			_, _ = w.Write([]byte("<html></html>"))
			return
		}

		require.True(t, strings.Contains(r.URL.Path, "/wday/cxs/mango/Careers/jobs"))
		sawCSRF = r.Header.Get("X-CALYPSO-CSRF-TOKEN")

		var body struct {
			Limit  int `json:"limit"`
			Offset int `json:"offset"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, pageLimit, body.Limit)
		pages++

		var rows []string
		for i := body.Offset; i < body.Offset+pageLimit && i < 30; i++ {
			title := "Retail Associate"
			bullets := `["Madrid", "Spain"]`
			if i == 25 {
				title = "Data Engineer"
				bullets = `["Barcelona", "Spain"]`
			}
			rows = append(rows, fmt.Sprintf(`{
				"title": "%s",
				"externalPath": "/job/req-%d",
				"bulletFields": %s
			}`, title, i, bullets))
		}
		_, _ = fmt.Fprintf(w, `{"total": 30, "jobPostings": [%s]}`, strings.Join(rows, ","))
	}))
	defer srv.Close()

	s := New(domain.Company{ID: "mango", PlatformID: "mango/wd3/Careers"}, testClient(srv), nil)

	res, err := s.Fetch(context.Background())
	require.NoError(t, err)

	require.Equal(t, "tok123", sawCSRF)
	require.Equal(t, 2, pages) // 30 postings at 20 per page
	require.Len(t, res.Jobs, 1)

	j := res.Jobs[0]
	require.Equal(t, "Data Engineer", j.Title)
	require.Equal(t, "Barcelona, Spain", j.Location)
	require.Contains(t, j.URL, "/en-US/Careers/job/req-25")
	require.NotEmpty(t, j.PostedDate)
}

func TestFetchBootstrapFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	s := New(domain.Company{ID: "mango", PlatformID: "mango/wd3/Careers"}, testClient(srv), nil)

	_, err := s.Fetch(context.Background())
	require.Error(t, err)
}
