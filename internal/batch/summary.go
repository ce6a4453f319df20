package batch

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/specialistvlad/nifconv/internal/diagnostic"
	"github.com/specialistvlad/nifconv/internal/lod"
)

// SummaryFile is the name of the report written next to the outputs.
const SummaryFile = "summary.yaml"

// Document statuses used in the summary.
const (
	StatusConverted = "converted"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
	StatusCancelled = "cancelled"
	StatusCollected = "collected"
)

// Summary reports a whole batch.
type Summary struct {
	RunID      string           `yaml:"run_id"`
	Started    time.Time        `yaml:"started"`
	Duration   time.Duration    `yaml:"duration"`
	Total      int              `yaml:"total"`
	Converted  int              `yaml:"converted"`
	Failed     int              `yaml:"failed"`
	Skipped    int              `yaml:"skipped"`
	Cancelled  int              `yaml:"cancelled"`
	FailedList []string         `yaml:"failed_documents,omitempty"`
	HighLevel  []lod.HighLevel  `yaml:"high_level_lods,omitempty"`
	Documents  []DocumentReport `yaml:"documents"`
}

// DocumentReport is the per-document line of a Summary.
type DocumentReport struct {
	Source      string                 `yaml:"source"`
	Output      string                 `yaml:"output,omitempty"`
	Type        string                 `yaml:"type"`
	Status      string                 `yaml:"status"`
	Error       string                 `yaml:"error,omitempty"`
	Diagnostics diagnostic.Diagnostics `yaml:"diagnostics,omitempty"`
}

func newSummary(runID string, started time.Time, outcomes []Outcome) *Summary {
	s := &Summary{
		RunID:     runID,
		Started:   started.UTC(),
		Duration:  time.Since(started).Round(time.Millisecond),
		Total:     len(outcomes),
		Documents: make([]DocumentReport, 0, len(outcomes)),
	}
	for _, o := range outcomes {
		rep := DocumentReport{Source: o.Job.Rel, Type: o.Job.File.Type.String()}
		if o.Written {
			rep.Output = o.Job.Output
		}
		if o.Err != nil {
			rep.Error = o.Err.Error()
		}
		if o.Result != nil {
			rep.Diagnostics = o.Result.Diagnostics
		}

		switch {
		case o.Cancelled:
			rep.Status = StatusCancelled
			s.Cancelled++
		case o.Skipped:
			rep.Status = StatusSkipped
			s.Skipped++
		case o.Job.File.Type == lod.LODObjectHigh:
			rep.Status = StatusCollected
			s.HighLevel = append(s.HighLevel, o.Job.File.HighLevel(o.Job.Rel))
		case o.Success:
			rep.Status = StatusConverted
			s.Converted++
		default:
			rep.Status = StatusFailed
			s.Failed++
			s.FailedList = append(s.FailedList, o.Job.Rel)
		}
		s.Documents = append(s.Documents, rep)
	}
	return s
}

// OK reports whether every started document succeeded.
func (s *Summary) OK() bool {
	return s.Failed == 0
}

// Write stores the summary as YAML at path.
func (s *Summary) Write(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	return nil
}
