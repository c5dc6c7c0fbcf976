package pipeline

import (
	"os"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/orgaos-cli/internal/ingest"
	"github.com/sells-group/orgaos-cli/internal/model"
	"github.com/sells-group/orgaos-cli/internal/reconcile"
)

// ManifestFile is written next to the cleaned dataset.
const ManifestFile = "manifest.yaml"

// RosterInfo describes the roster used for enrichment.
type RosterInfo struct {
	Path     string `yaml:"path,omitempty" json:"path,omitempty"`
	Encoding string `yaml:"encoding,omitempty" json:"encoding,omitempty"`
	Rows     int    `yaml:"rows" json:"rows"`
}

// Manifest records what a clean run read, did, and wrote.
type Manifest struct {
	RunID          string                    `yaml:"run_id" json:"run_id"`
	StartedAt      time.Time                 `yaml:"started_at" json:"started_at"`
	FinishedAt     time.Time                 `yaml:"finished_at" json:"finished_at"`
	Stages         []StageTiming             `yaml:"stages" json:"stages"`
	Inputs         []ingest.SourceInfo       `yaml:"inputs" json:"inputs"`
	Roster         RosterInfo                `yaml:"roster" json:"roster"`
	Stats          reconcile.Stats           `yaml:"stats" json:"stats"`
	Warnings       int                       `yaml:"warnings" json:"warnings"`
	WarningsByKind map[model.WarningKind]int `yaml:"warnings_by_kind,omitempty" json:"warnings_by_kind,omitempty"`
	Output         string                    `yaml:"output" json:"output"`
	Columns        []string                  `yaml:"columns" json:"columns"`
}

// WriteManifest saves m as YAML.
func WriteManifest(path string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return eris.Wrap(err, "pipeline: marshal manifest")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "pipeline: write manifest %s", path)
	}
	return nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: read manifest %s", path)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, eris.Wrapf(err, "pipeline: parse manifest %s", path)
	}
	return &m, nil
}
