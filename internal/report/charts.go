package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	chart "github.com/wcharczuk/go-chart/v2"
	"go.uber.org/zap"
)

const maxLabelRunes = 18

type renderer interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

// RenderCharts draws the five participation charts as PNGs under dir and
// returns the paths written. Charts with no data are skipped.
func RenderCharts(dir string, s *Stats, topN int) ([]string, error) {
	log := zap.L().With(zap.String("component", "report.charts"))

	var bars []chart.Value
	for _, c := range head(s.TopLegislators, topN) {
		bars = append(bars, chart.Value{Label: shortLabel(c.Key), Value: float64(c.Count)})
	}
	type job struct {
		file string
		r    renderer
		n    int
	}
	jobs := []job{
		{fmt.Sprintf("top%d_deputados.png", topN), barChart(fmt.Sprintf("Top %d legislators by body memberships", topN), bars), len(bars)},
	}

	bars = nil
	for _, c := range head(s.PopularBodies, topN) {
		bars = append(bars, chart.Value{Label: shortLabel(c.Key), Value: float64(c.Count)})
	}
	jobs = append(jobs, job{fmt.Sprintf("top%d_orgaos.png", topN), barChart(fmt.Sprintf("Top %d bodies by distinct legislators", topN), bars), len(bars)})

	jobs = append(jobs, job{"participacoes_por_legislatura.png", termChart(s.TermParticipation), len(s.TermParticipation)})

	bars = nil
	for _, p := range s.TopParties(topN) {
		bars = append(bars, chart.Value{Label: shortLabel(p.Party), Value: p.Average})
	}
	jobs = append(jobs, job{fmt.Sprintf("top%d_partidos_media.png", topN), barChart(fmt.Sprintf("Top %d parties by mean memberships per legislator", topN), bars), len(bars)})

	bars = nil
	for _, c := range head(s.StateParticipation, topN) {
		bars = append(bars, chart.Value{Label: shortLabel(c.Key), Value: float64(c.Count)})
	}
	jobs = append(jobs, job{fmt.Sprintf("top%d_ufs.png", topN), barChart(fmt.Sprintf("Top %d states by distinct legislators", topN), bars), len(bars)})

	var paths []string
	var errs []error
	for _, j := range jobs {
		if j.n == 0 {
			log.Warn("no data for chart; skipped", zap.String("file", j.file))
			continue
		}
		path := filepath.Join(dir, j.file)
		if err := renderPNG(path, j.r); err != nil {
			log.Error("chart failed", zap.String("file", j.file), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		paths = append(paths, path)
	}
	if len(errs) > 0 {
		return paths, eris.Wrapf(errors.Join(errs...), "report: %d of %d charts failed", len(errs), len(jobs))
	}
	return paths, nil
}

func barChart(title string, bars []chart.Value) chart.BarChart {
	top := 1.0
	for _, b := range bars {
		top = max(top, b.Value)
	}
	return chart.BarChart{
		Title:      title,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		Width:      1400,
		Height:     600,
		BarWidth:   80,
		YAxis:      chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: top * 1.1}},
		Bars:       bars,
	}
}

// termChart draws a line over terms in order. A line needs two points, so a
// single term is drawn as a bar.
func termChart(counts []Count) renderer {
	if len(counts) < 2 {
		bars := make([]chart.Value, len(counts))
		for i, c := range counts {
			bars[i] = chart.Value{Label: c.Key, Value: float64(c.Count)}
		}
		return barChart("Participations per legislature", bars)
	}

	xs := make([]float64, len(counts))
	ys := make([]float64, len(counts))
	ticks := make([]chart.Tick, len(counts))
	top := 1.0
	for i, c := range counts {
		xs[i] = float64(i)
		ys[i] = float64(c.Count)
		ticks[i] = chart.Tick{Value: float64(i), Label: c.Key}
		top = max(top, ys[i])
	}
	return chart.Chart{
		Title:      "Participations per legislature",
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		Width:      1000,
		Height:     500,
		XAxis: chart.XAxis{
			Name:  "Legislature",
			Ticks: ticks,
			Range: &chart.ContinuousRange{Min: -0.5, Max: float64(len(counts)) - 0.5},
		},
		YAxis: chart.YAxis{
			Name:  "Participations",
			Range: &chart.ContinuousRange{Min: 0, Max: top * 1.1},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{XValues: xs, YValues: ys},
		},
	}
}

func renderPNG(path string, r renderer) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "report: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	if err := r.Render(chart.PNG, f); err != nil {
		return eris.Wrapf(err, "report: render %s", path)
	}
	return eris.Wrapf(f.Close(), "report: close %s", path)
}

func shortLabel(s string) string {
	if utf8.RuneCountInString(s) <= maxLabelRunes {
		return s
	}
	r := []rune(s)
	return string(r[:maxLabelRunes-1]) + "…"
}
