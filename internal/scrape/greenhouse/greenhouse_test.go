package greenhouse

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

// testClient rewrites every request to the test server.
func testClient(srv *httptest.Server) *http.Client {
	return &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			req.URL.Scheme = "http"
			req.URL.Host = srv.Listener.Addr().String()
			return http.DefaultTransport.RoundTrip(req)
		}),
	}
}

const boardPayload = `{
	"jobs": [
		{
			"id": 101,
			"title": "Data Engineer",
			"location": {"name": "Barcelona, Spain"},
			"absolute_url": "https://boards.greenhouse.io/acme/jobs/101",
			"updated_at": "2026-02-13T10:00:00Z",
			"content": "<p>Build data pipelines on our analytics platform.</p>",
			"departments": [{"name": "Data"}]
		},
		{
			"id": 102,
			"title": "Account Manager",
			"location": {"name": "Barcelona, Spain"},
			"absolute_url": "https://boards.greenhouse.io/acme/jobs/102",
			"updated_at": "2026-02-13T10:00:00Z",
			"content": ""
		},
		{
			"id": 103,
			"title": "Data Scientist",
			"location": {"name": "Munich, Germany"},
			"absolute_url": "https://boards.greenhouse.io/acme/jobs/103",
			"updated_at": "2026-02-13T10:00:00Z",
			"content": ""
		}
	]
}`

func TestFetchFiltersAndNormalizes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Contains(t, r.URL.Path, "/v1/boards/acme/jobs")
		require.Equal(t, "true", r.URL.Query().Get("content"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(boardPayload))
	}))
	defer srv.Close()

	s := New(domain.Company{ID: "acme", Name: "Acme", Platform: "greenhouse", PlatformID: "acme"}, testClient(srv), nil)

	res, err := s.Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, "greenhouse:acme", res.Source)
	require.Len(t, res.Jobs, 1)

	j := res.Jobs[0]
	require.Equal(t, "acme", j.CompanyID)
	require.Equal(t, "Data Engineer", j.Title)
	require.Equal(t, "Barcelona, Spain", j.Location)
	require.Equal(t, "Data", j.Department)
	require.Equal(t, "2026-02-13", j.PostedDate)
	require.Equal(t, "Build data pipelines on our analytics platform.", j.Description)
	require.True(t, j.IsBarcelona)
	require.True(t, j.IsDataRole)
}

func TestFetchSkipsNonEnglish(t *testing.T) {
	payload := `{
		"jobs": [{
			"id": 1,
			"title": "Data Engineer",
			"location": {"name": "Barcelona, Spain"},
			"absolute_url": "https://boards.greenhouse.io/acme/jobs/1",
			"content": "Somos una empresa y buscamos experiencia con requisitos claros."
		}]
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	s := New(domain.Company{ID: "acme", PlatformID: "acme"}, testClient(srv), nil)

	res, err := s.Fetch(context.Background())
	require.NoError(t, err)
	require.Empty(t, res.Jobs)
}

func TestFetchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	s := New(domain.Company{ID: "acme", PlatformID: "gone"}, testClient(srv), nil)

	_, err := s.Fetch(context.Background())
	require.Error(t, err)
}
