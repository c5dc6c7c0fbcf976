package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/orgaos-cli/internal/fetcher"
	"github.com/sells-group/orgaos-cli/internal/model"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoadMemberships_NoFiles(t *testing.T) {
	l := &Loader{}
	_, err := l.LoadMemberships(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoInputFiles)
}

func TestLoadMemberships_TagsAndConcatenates(t *testing.T) {
	dir := t.TempDir()
	p1 := writeFile(t, dir, "orgaosDeputados-L51.csv", []byte(
		" uriOrgao ;uriDeputado;siglaPartido\no1;u1;PT\no2;u2;\n"))
	p2 := writeFile(t, dir, "orgaosDeputados-L52.csv", []byte(
		"uriDeputado;uriOrgao;cargo\nu3;o3;Titular\n"))

	l := &Loader{Workers: 4}
	m, err := l.LoadMemberships(context.Background(), []string{p1, p2})
	require.NoError(t, err)

	tbl := m.Table
	assert.Equal(t, []string{"uriOrgao", "uriDeputado", "siglaPartido", model.ColTerm, "cargo"}, tbl.Columns())
	require.Equal(t, 3, tbl.Len())

	assert.Equal(t, "L51", tbl.Get(0, model.ColTerm).Value)
	assert.Equal(t, "L51", tbl.Get(1, model.ColTerm).Value)
	assert.Equal(t, "L52", tbl.Get(2, model.ColTerm).Value)

	assert.Equal(t, "o3", tbl.Get(2, "uriOrgao").Value)
	assert.False(t, tbl.Get(1, "siglaPartido").Valid, "empty cell is null")
	assert.False(t, tbl.Get(0, "cargo").Valid, "column absent from file is null")
	assert.Equal(t, "Titular", tbl.Get(2, "cargo").Value)

	require.Len(t, m.Sources, 2)
	assert.Equal(t, SourceInfo{Path: p1, Term: "L51", Encoding: "utf-8", Rows: 2}, m.Sources[0])
	assert.Equal(t, "L52", m.Sources[1].Term)
	assert.Empty(t, m.Warnings)

	assert.Equal(t, []model.RowOrigin{
		{Path: p1, Row: 1},
		{Path: p1, Row: 2},
		{Path: p2, Row: 1},
	}, m.Origins)
}

func TestLoadMemberships_PreservesInputOrderWithManyWorkers(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, term := range []string{"50", "51", "52", "53", "54", "55", "56", "57"} {
		paths = append(paths, writeFile(t, dir, "o-L"+term+".csv", []byte("uriOrgao\no"+term+"\n")))
	}

	l := &Loader{Workers: 8}
	m, err := l.LoadMemberships(context.Background(), paths)
	require.NoError(t, err)

	require.Equal(t, 8, m.Table.Len())
	for i, term := range []string{"50", "51", "52", "53", "54", "55", "56", "57"} {
		assert.Equal(t, "L"+term, m.Table.Get(i, model.ColTerm).Value)
		assert.Equal(t, "o"+term, m.Table.Get(i, "uriOrgao").Value)
	}
}

func TestLoadMemberships_Latin1Fallback(t *testing.T) {
	dir := t.TempDir()
	// "Comissão" with ã = 0xE3 in ISO-8859-1.
	data := append([]byte("nomeOrgao\nComiss"), 0xE3, 'o', '\n')
	p := writeFile(t, dir, "orgaosDeputados-L51.csv", data)

	l := &Loader{}
	m, err := l.LoadMemberships(context.Background(), []string{p})
	require.NoError(t, err)

	assert.Equal(t, "Comissão", m.Table.Get(0, "nomeOrgao").Value)
	assert.Equal(t, "latin-1", m.Sources[0].Encoding)
}

func TestLoadMemberships_UnparseableFilenameWarns(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "orgaos.csv", []byte("uriOrgao\no1\n"))

	l := &Loader{}
	m, err := l.LoadMemberships(context.Background(), []string{p})
	require.NoError(t, err)

	assert.False(t, m.Table.Get(0, model.ColTerm).Valid)
	require.Len(t, m.Warnings, 1)
	assert.Equal(t, model.WarningFilenamePattern, m.Warnings[0].Kind)
	assert.Equal(t, p, m.Warnings[0].Source)
}

func TestLoadMemberships_RowWidthWarns(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "o-L51.csv", []byte("a;b\n1\n"))

	l := &Loader{}
	m, err := l.LoadMemberships(context.Background(), []string{p})
	require.NoError(t, err)

	require.Len(t, m.Warnings, 1)
	assert.Equal(t, model.WarningRowWidth, m.Warnings[0].Kind)
	assert.Equal(t, 1, m.Warnings[0].Row)
	assert.False(t, m.Table.Get(0, "b").Valid)
}

func TestLoadMemberships_UnreadableFile(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "o-L51.csv", []byte("uriOrgao\no1\n"))
	empty := writeFile(t, dir, "o-L52.csv", nil)

	l := &Loader{}
	_, err := l.LoadMemberships(context.Background(), []string{good, empty})
	require.Error(t, err)

	var ue *UnreadableFileError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, empty, ue.Path)
	assert.ErrorIs(t, err, fetcher.ErrNoHeader)
}

func TestLoadMemberships_MissingFile(t *testing.T) {
	l := &Loader{}
	_, err := l.LoadMemberships(context.Background(), []string{filepath.Join(t.TempDir(), "o-L51.csv")})

	var ue *UnreadableFileError
	assert.True(t, errors.As(err, &ue))
}

func TestLoadMemberships_StrictEncodingFails(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "o-L51.csv", []byte{'a', '\n', 0xE3, '\n'})

	l := &Loader{Encodings: []fetcher.Encoding{fetcher.UTF8}}
	_, err := l.LoadMemberships(context.Background(), []string{p})

	var ue *UnreadableFileError
	require.True(t, errors.As(err, &ue))
	assert.Contains(t, err.Error(), "all encodings failed")
}

func TestLoadMemberships_SkipUnreadable(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "o-L51.csv", []byte("uriOrgao\no1\n"))
	empty := writeFile(t, dir, "o-L52.csv", nil)

	l := &Loader{SkipUnreadable: true}
	m, err := l.LoadMemberships(context.Background(), []string{good, empty})
	require.NoError(t, err)

	assert.Equal(t, 1, m.Table.Len())
	require.Len(t, m.Sources, 1)
	require.Len(t, m.Warnings, 1)
	assert.Equal(t, model.WarningSkippedFile, m.Warnings[0].Kind)
}

func TestLoadMemberships_SkipUnreadable_AllBad(t *testing.T) {
	dir := t.TempDir()
	empty := writeFile(t, dir, "o-L52.csv", nil)

	l := &Loader{SkipUnreadable: true}
	_, err := l.LoadMemberships(context.Background(), []string{empty})
	assert.ErrorIs(t, err, ErrNoInputFiles)
}

func TestLoadMemberships_OverwritesExistingTermColumn(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "o-L51.csv", []byte("legislatura;uriOrgao\n99;o1\n"))

	l := &Loader{}
	m, err := l.LoadMemberships(context.Background(), []string{p})
	require.NoError(t, err)
	assert.Equal(t, "L51", m.Table.Get(0, model.ColTerm).Value)
	assert.Equal(t, []string{model.ColTerm, "uriOrgao"}, m.Table.Columns())
}

func TestLoadMemberships_ContextCancelled(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "o-L51.csv", []byte("uriOrgao\no1\n"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := &Loader{}
	_, err := l.LoadMemberships(ctx, []string{p})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadRoster_NoFile(t *testing.T) {
	l := &Loader{}
	r, err := l.LoadRoster("")
	require.NoError(t, err)
	assert.Equal(t, 0, r.Table.Len())
	assert.Empty(t, r.Table.Columns())
	assert.Empty(t, r.Path)
}

func TestLoadRoster_RenamesURI(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "deputados.csv", []byte("uri ;ufNascimento;siglaSexo\nu1;SP;F\n"))

	l := &Loader{}
	r, err := l.LoadRoster(p)
	require.NoError(t, err)

	assert.Equal(t, []string{model.ColLegislatorURI, "ufNascimento", "siglaSexo"}, r.Table.Columns())
	assert.Equal(t, "u1", r.Table.Get(0, model.ColLegislatorURI).Value)
	assert.Equal(t, p, r.Path)
	assert.Equal(t, "utf-8", r.Encoding)
}

func TestLoadRoster_KeepsCanonicalURI(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "deputados.csv", []byte("uri;uriDeputado\nx;u1\n"))

	l := &Loader{}
	r, err := l.LoadRoster(p)
	require.NoError(t, err)

	assert.Equal(t, []string{"uri", model.ColLegislatorURI}, r.Table.Columns())
	assert.Equal(t, "u1", r.Table.Get(0, model.ColLegislatorURI).Value)
}

func TestLoadRoster_Unreadable(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "deputados.csv", nil)

	l := &Loader{}
	_, err := l.LoadRoster(p)
	var ue *UnreadableFileError
	assert.True(t, errors.As(err, &ue))
}
