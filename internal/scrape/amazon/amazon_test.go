package amazon

import (
	"context"
	"net/http"
	"net/http/httptest"
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

func TestFetchCityOverride(t *testing.T) {
	// normalized_location omits the city; the city field still counts
	payload := `{
		"jobs": [{
			"title": "Applied Scientist",
			"city": "Barcelona",
			"normalized_location": "Spain",
			"job_path": "/en/jobs/12345/applied-scientist",
			"job_category": "Science",
			"posted_date": "January 13, 2026",
			"description_short": "Applied research on forecasting models."
		}]
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Barcelona", r.URL.Query().Get("city"))
		require.Equal(t, "ESP", r.URL.Query().Get("country"))
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	s := New(domain.Company{ID: "amazon"}, testClient(srv), nil)

	res, err := s.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Jobs, 1)

	j := res.Jobs[0]
	require.Equal(t, "Applied Scientist", j.Title)
	require.Equal(t, "https://www.amazon.jobs/en/jobs/12345/applied-scientist", j.URL)
	require.Equal(t, "2026-01-13", j.PostedDate)
	require.Equal(t, "Science", j.Department)
	require.True(t, j.IsBarcelona)
}
