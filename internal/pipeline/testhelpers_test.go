package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/orgaos-cli/internal/config"
	"github.com/sells-group/orgaos-cli/internal/store"
)

const termL55 = "uriOrgao;siglaOrgao;nomeOrgao;nomePublicacaoOrgao;uriDeputado;nomeDeputado;siglaPartido;siglaUF;cargo;dataInicio;dataFim\n" +
	"o1;CCJC;Constituição;CCJC;d1;Ana;PT;SP;Titular;2015-02-01;2016-01-31\n" +
	"o1;CCJC;Constituição;CCJC;d2;Bia;;;Titular;2015-03-01;\n"

// Latin-1 encoded: "Sa\xfade" is "Saúde".
const termL56 = "uriOrgao;nomeOrgao;uriDeputado;nomeDeputado;siglaPartido;siglaUF;dataInicio;dataFim\n" +
	"o2;Sa\xfade;d1;Ana;PT;SP;2019-02-01;2018-01-01\n" +
	"o2;Sa\xfade;d3;Caio;PL;RJ;2019-02-01;2020-01-31\n" +
	"o2;Sa\xfade;d3;Caio;PL;RJ;2019-02-01;2020-01-31\n" +
	"o2;Sa\xfade;d1;Ana;PT;SP;not-a-date;\n"

const rosterCSV = "uri;nome;ufNascimento;siglaSexo\n" +
	"d1;Ana;SP;F\n" +
	"d2;Bia;MG;F\n"

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

// testConfig lays out a data dir with two term extracts and a roster.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	data := filepath.Join(root, "data")
	require.NoError(t, os.MkdirAll(data, 0o755))
	writeFixture(t, data, "orgaosDeputados-L55.csv", termL55)
	writeFixture(t, data, "orgaosDeputados-L56.csv", termL56)
	writeFixture(t, data, "deputados.csv", rosterCSV)

	cfg := &config.Config{}
	cfg.Input.MembershipGlob = filepath.Join(data, "orgaosDeputados-L*.csv")
	cfg.Input.RosterGlob = filepath.Join(data, "deputados*.csv")
	cfg.Input.Encodings = []string{"utf-8", "latin-1"}
	cfg.Input.Workers = 2
	cfg.Clean.OutputDir = filepath.Join(root, "output")
	cfg.Clean.OutputFile = "orgaos_deputados_limpo.csv"
	cfg.Clean.UnknownLabel = "Unknown"
	cfg.Report.TopN = 10
	cfg.Report.XLSX = true
	cfg.Fetch.DestDir = filepath.Join(root, "downloads")
	cfg.Publish.Schema = "orgaos"
	cfg.Publish.Table = "memberships"
	return cfg
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	return st
}
