package report

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/orgaos-cli/internal/table"
)

// Sheet is one aggregate rendered as a header and string rows.
type Sheet struct {
	Name   string     `json:"name"`
	File   string     `json:"file"`
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// Sheets renders the aggregates in their published layout.
func (s *Stats) Sheets() []Sheet {
	legTerms := Sheet{Name: "orgaos_por_deputado", File: "orgaos_por_deputado.csv",
		Header: []string{"nomeDeputado", "legislatura", "qtd_orgaos"}}
	for _, r := range s.LegislatorTerms {
		legTerms.Rows = append(legTerms.Rows, []string{r.Legislator, r.Term, strconv.Itoa(r.Bodies)})
	}

	parties := Sheet{Name: "media_partido", File: "media_partido.csv",
		Header: []string{"siglaPartido", "media_participacoes_por_deputado"}}
	for _, r := range s.PartyAverages {
		parties.Rows = append(parties.Rows, []string{r.Party, strconv.FormatFloat(r.Average, 'f', -1, 64)})
	}

	return []Sheet{
		legTerms,
		parties,
		countSheet("orgaos_populares", []string{"nomeOrgao", "num_deputados"}, s.PopularBodies),
		countSheet("participacoes_por_legislatura", []string{"legislatura", "qtd_participacoes"}, s.TermParticipation),
		countSheet("participacao_por_uf", []string{"siglaUF", "num_deputados"}, s.StateParticipation),
	}
}

// Sheet returns the named sheet.
func (s *Stats) Sheet(name string) (Sheet, bool) {
	for _, sh := range s.Sheets() {
		if sh.Name == name {
			return sh, true
		}
	}
	return Sheet{}, false
}

func countSheet(name string, header []string, counts []Count) Sheet {
	sh := Sheet{Name: name, File: name + ".csv", Header: header}
	for _, c := range counts {
		sh.Rows = append(sh.Rows, []string{c.Key, strconv.Itoa(c.Count)})
	}
	return sh
}

// WriteCSVs writes every sheet as a semicolon-delimited file under dir and
// returns the paths written.
func WriteCSVs(dir string, s *Stats) ([]string, error) {
	var paths []string
	for _, sh := range s.Sheets() {
		path := filepath.Join(dir, sh.File)
		if err := writeSheetCSV(path, sh); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeSheetCSV(path string, sh Sheet) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "report: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	if err := table.WriteDelimited(f, table.FromRecords(sh.Header, sh.Rows), ';'); err != nil {
		return eris.Wrapf(err, "report: write %s", path)
	}
	return eris.Wrapf(f.Close(), "report: close %s", path)
}

// WriteWorkbook saves all sheets into one XLSX file. Numeric columns are
// stored as numbers.
func WriteWorkbook(path string, s *Stats) error {
	f := xlsx.NewFile()
	for _, sh := range s.Sheets() {
		sheet, err := f.AddSheet(sheetName(sh.Name))
		if err != nil {
			return eris.Wrapf(err, "report: add sheet %s", sh.Name)
		}
		hdr := sheet.AddRow()
		for _, h := range sh.Header {
			hdr.AddCell().SetString(h)
		}
		for _, r := range sh.Rows {
			row := sheet.AddRow()
			for j, v := range r {
				cell := row.AddCell()
				if j == len(r)-1 {
					if n, err := strconv.ParseFloat(v, 64); err == nil {
						cell.SetFloat(n)
						continue
					}
				}
				cell.SetString(v)
			}
		}
	}
	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "report: save workbook %s", path)
	}
	return nil
}

// sheetName fits Excel's 31 character limit.
func sheetName(name string) string {
	if len(name) > 31 {
		return name[:31]
	}
	return name
}
