package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/orgaos-cli/internal/fetcher"
)

func TestURLs(t *testing.T) {
	base := "https://dadosabertos.camara.leg.br/arquivos/"
	assert.Equal(t, "https://dadosabertos.camara.leg.br/arquivos/orgaosDeputados/csv/orgaosDeputados-L57.csv", MembershipURL(base, 57))
	assert.Equal(t, "https://dadosabertos.camara.leg.br/arquivos/deputados/csv/deputados.csv", RosterURL(base))
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/orgaosDeputados/csv/orgaosDeputados-L55.csv":
			w.Write([]byte(termL55)) //nolint:errcheck
		case "/deputados/csv/deputados.csv":
			w.Write([]byte(rosterCSV)) //nolint:errcheck
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	cfg := testConfig(t)
	cfg.Fetch.BaseURL = srv.URL
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{RequestsPerSecond: 100, Timeout: 5 * time.Second, BaseBackoff: time.Millisecond})

	files, err := New(cfg, nil).Fetch(context.Background(), f, []int{55})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(cfg.Fetch.DestDir, "orgaosDeputados-L55.csv"),
		filepath.Join(cfg.Fetch.DestDir, "deputados.csv"),
	}, files)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Equal(t, termL55, string(data))
}

func TestFetch_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	cfg := testConfig(t)
	cfg.Fetch.BaseURL = srv.URL
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{RequestsPerSecond: 100, BaseBackoff: time.Millisecond})

	_, err := New(cfg, nil).Fetch(context.Background(), f, []int{99})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "orgaosDeputados-L99.csv")
}

func TestFetch_NoTerms(t *testing.T) {
	_, err := New(testConfig(t), nil).Fetch(context.Background(), nil, nil)
	assert.Error(t, err)
}
