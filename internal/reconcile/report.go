package reconcile

import (
	"strconv"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NoteKind classifies a data-quality condition met during a run. None of
// them stop the batch.
type NoteKind string

const (
	NoteMalformedRecord NoteKind = "malformed_record"
	NoteAmbiguousMatch  NoteKind = "ambiguous_match"
	NoteMissingMapping  NoteKind = "missing_mapping"
)

type Note struct {
	Kind    NoteKind
	Subject string
	Detail  string
}

// Pass names, in execution order.
const (
	PassNativeNames = "native_names"
	PassAliases     = "aliases"
	PassKoreanNames = "korean_names"
	PassProfiles    = "profiles"
)

// PassReport holds the counters of one pass.
type PassReport struct {
	Pass           string
	Updated        int
	Added          int
	Unchanged      int
	Skipped        int
	Unmatched      int
	Filtered       int
	Ambiguous      int
	MissingMapping int
	Notes          []Note
}

// Changes is the number of mutations the pass made.
func (p *PassReport) Changes() int {
	return p.Updated + p.Added
}

func (p *PassReport) note(kind NoteKind, subject, detail string) {
	p.Notes = append(p.Notes, Note{Kind: kind, Subject: subject, Detail: detail})
}

func (p *PassReport) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("pass", p.Pass)
	enc.AddInt("updated", p.Updated)
	enc.AddInt("added", p.Added)
	enc.AddInt("unchanged", p.Unchanged)
	enc.AddInt("skipped", p.Skipped)
	enc.AddInt("unmatched", p.Unmatched)
	enc.AddInt("filtered", p.Filtered)
	enc.AddInt("ambiguous", p.Ambiguous)
	enc.AddInt("missing_mapping", p.MissingMapping)
	return nil
}

// Report aggregates the pass reports of one run.
type Report struct {
	RunID         string
	Passes        []*PassReport
	RegistryNotes []Note
}

func (r *Report) Pass(name string) *PassReport {
	for _, p := range r.Passes {
		if p.Pass == name {
			return p
		}
	}
	return nil
}

func (r *Report) Changes() int {
	total := 0
	for _, p := range r.Passes {
		total += p.Changes()
	}
	return total
}

func (r *Report) Notes() []Note {
	notes := append([]Note(nil), r.RegistryNotes...)
	for _, p := range r.Passes {
		notes = append(notes, p.Notes...)
	}
	return notes
}

// Log writes one summary line per pass.
func (r *Report) Log(logger *zap.Logger) {
	for _, p := range r.Passes {
		logger.Info("Pass summary",
			zap.String("run_id", r.RunID),
			zap.Object("report", p),
			zap.Int("notes", len(p.Notes)),
		)
	}
}

func indexSubject(idx int) string {
	return "#" + strconv.Itoa(idx)
}
