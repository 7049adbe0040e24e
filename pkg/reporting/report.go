/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: report.go
Description: Run reports for marker inference. Turns pipeline and holdout results into a
printable model where every word and pattern carries its expected and observed count per
document, and renders it as text or JSON.
*/

package reporting

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"
	"github.com/kleascm/akaylee-repeats/pkg/analysis"
	"github.com/kleascm/akaylee-repeats/pkg/assembler"
	"github.com/kleascm/akaylee-repeats/pkg/core"
	"github.com/kleascm/akaylee-repeats/pkg/inference"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

// EntryDiag is one document's view of a word or pattern
type EntryDiag struct {
	Index    int    `json:"index"`
	Expected int    `json:"expected"`
	Observed int    `json:"observed"`
	Size     int    `json:"size"`
	Label    string `json:"label"`
}

// Matches reports whether the observed count equals the multiplicity
func (d EntryDiag) Matches() bool {
	return d.Observed == d.Expected
}

// WordReport describes one literal word
type WordReport struct {
	CArray  string      `json:"c_array"`
	Text    string      `json:"text"`
	Len     int         `json:"len"`
	Entries []EntryDiag `json:"entries,omitempty"`
}

// PatternReport describes one gapped pattern
type PatternReport struct {
	Pattern    string      `json:"pattern"`
	Class      string      `json:"class"`
	Literals   []string    `json:"literals"` // C arrays of the non-empty literals
	Gaps       []int       `json:"gaps"`
	LiteralLen int         `json:"literal_len"`
	GapLen     int         `json:"gap_len"`
	Entries    []EntryDiag `json:"entries"`
}

// AssemblyReport summarises the assembler run
type AssemblyReport struct {
	SpaceSize int64           `json:"space_size"`
	Total     int             `json:"total"`
	Evaluated int             `json:"evaluated"`
	Truncated bool            `json:"truncated"`
	Exhausted bool            `json:"exhausted"`
	MinGap    int             `json:"min_gap"`
	MaxGap    int             `json:"max_gap"`
	Fuzz      int             `json:"fuzz"`
	VocabSize int             `json:"vocab_size"`
	Good      []PatternReport `json:"good"`
	Part      []PatternReport `json:"part"`
}

// Report is the printable model of a pipeline run
type Report struct {
	RunID       uuid.UUID         `json:"run_id"`
	GeneratedAt time.Time         `json:"generated_at"`
	Entries     []EntryDiag       `json:"corpus"` // Observed is left at zero
	TotalBytes  int               `json:"total_bytes"`
	Rounds      []core.RoundStats `json:"rounds,omitempty"`
	NoMarker    bool              `json:"no_marker"`
	Ambiguous   bool              `json:"ambiguous"`
	Converged   bool              `json:"converged"`
	Exhausted   bool              `json:"exhausted"`
	WordCount   int               `json:"word_count"`
	Words       []WordReport      `json:"words"` // At most the configured number of words
	Exact       []WordReport      `json:"exact"`
	LastExact   []WordReport      `json:"last_exact"`
	Archived    int               `json:"archived"`
	VocabSize   int               `json:"vocab_size"`
	Assembly    *AssemblyReport   `json:"assembly,omitempty"`
	Elapsed     time.Duration     `json:"elapsed"`
}

// NewReport builds the report of a pipeline run, listing at most maxWords final words
// (0 lists them all)
func NewReport(res *inference.Result, maxWords int) *Report {
	r := &Report{
		RunID:       res.RunID,
		GeneratedAt: time.Now(),
		NoMarker:    res.NoMarker,
		Ambiguous:   res.Ambiguous,
		VocabSize:   len(res.Vocabulary),
		Elapsed:     res.Elapsed,
	}
	corpus := res.Corpus
	if corpus != nil {
		r.TotalBytes = corpus.TotalSize()
		for i, e := range corpus.Entries() {
			r.Entries = append(r.Entries, EntryDiag{Index: i, Expected: e.Multiplicity, Size: e.Size(), Label: e.Label})
		}
	}

	if m := res.Mine; m != nil {
		r.Rounds = m.Rounds
		r.Converged = m.Converged
		r.Exhausted = m.Exhausted
		r.WordCount = len(m.Words)
		r.Archived = m.Archive.Len()
		words := m.Words
		if maxWords > 0 && len(words) > maxWords {
			words = words[:maxWords]
		}
		r.Words = wordReports(corpus, words)
		r.Exact = wordReports(corpus, m.Exact)
		r.LastExact = wordReports(corpus, m.LastExact)
	}

	if a := res.Assembly; a != nil {
		r.Assembly = NewAssemblyReport(corpus, a)
	}
	return r
}

// NewAssemblyReport builds the report of an assembler run
func NewAssemblyReport(corpus *core.Corpus, a *assembler.Result) *AssemblyReport {
	rep := &AssemblyReport{
		SpaceSize: a.SpaceSize,
		Total:     a.Total,
		Evaluated: a.Evaluated,
		Truncated: a.Truncated,
		Exhausted: a.Exhausted,
		MinGap:    a.MinGap,
		MaxGap:    a.MaxGap,
		Fuzz:      a.Fuzz,
		VocabSize: a.VocabSize,
	}
	for _, m := range a.Good {
		rep.Good = append(rep.Good, patternReport(corpus, m))
	}
	for _, m := range a.Part {
		rep.Part = append(rep.Part, patternReport(corpus, m))
	}
	return rep
}

func wordReports(corpus *core.Corpus, words [][]byte) []WordReport {
	out := make([]WordReport, 0, len(words))
	for _, w := range words {
		rep := WordReport{CArray: CArray(w), Text: Printable(w), Len: len(w)}
		if corpus != nil {
			rep.Entries = diagnostics(corpus, corpus.Counts(w))
		}
		out = append(out, rep)
	}
	return out
}

func patternReport(corpus *core.Corpus, m assembler.Match) PatternReport {
	p := m.Pattern
	rep := PatternReport{
		Pattern:    p.String(),
		Class:      m.Class.String(),
		Literals:   []string{CArray(p.Lit1)},
		LiteralLen: p.LiteralLen(),
		GapLen:     p.GapLen(),
	}
	if len(p.Lit2) > 0 {
		rep.Gaps = append(rep.Gaps, p.Gap2)
		rep.Literals = append(rep.Literals, CArray(p.Lit2))
	}
	if len(p.Lit3) > 0 {
		rep.Gaps = append(rep.Gaps, p.Gap3)
		rep.Literals = append(rep.Literals, CArray(p.Lit3))
	}
	if corpus != nil {
		rep.Entries = diagnostics(corpus, m.Counts)
	}
	return rep
}

func diagnostics(corpus *core.Corpus, counts []int) []EntryDiag {
	out := make([]EntryDiag, 0, corpus.Len())
	for i := 0; i < corpus.Len() && i < len(counts); i++ {
		e := corpus.Entry(i)
		out = append(out, EntryDiag{
			Index:    i,
			Expected: e.Multiplicity,
			Observed: counts[i],
			Size:     e.Size(),
			Label:    e.Label,
		})
	}
	return out
}

// HoldoutRunReport describes one leave-k-out run
type HoldoutRunReport struct {
	Excluded  []string     `json:"excluded"`
	WordLen   int          `json:"word_len"`
	Words     int          `json:"words"`
	Exact     []WordReport `json:"exact"`
	Converged bool         `json:"converged"`
	NoMarker  bool         `json:"no_marker"`
	Changed   bool         `json:"changed"`
	Err       string       `json:"error,omitempty"`
}

// HoldoutReport is the printable model of a holdout analysis
type HoldoutReport struct {
	RunID       uuid.UUID          `json:"run_id"`
	GeneratedAt time.Time          `json:"generated_at"`
	K           int                `json:"k"`
	Baseline    HoldoutRunReport   `json:"baseline"`
	Runs        []HoldoutRunReport `json:"runs"`
	Stable      []WordReport       `json:"stable"`
	Outliers    int                `json:"outliers"`
}

// NewHoldoutReport builds the report of a holdout analysis
func NewHoldoutReport(runID uuid.UUID, h *analysis.HoldoutResult) *HoldoutReport {
	rep := &HoldoutReport{
		RunID:       runID,
		GeneratedAt: time.Now(),
		K:           h.K,
		Baseline:    holdoutRun(h.Baseline),
		Stable:      wordReports(nil, h.Stable),
		Outliers:    len(h.Outliers()),
	}
	rep.Baseline.Excluded = nil
	for _, run := range h.Runs {
		rep.Runs = append(rep.Runs, holdoutRun(run))
	}
	return rep
}

func holdoutRun(run analysis.HoldoutRun) HoldoutRunReport {
	return HoldoutRunReport{
		Excluded:  run.Labels,
		WordLen:   run.WordLen,
		Words:     len(run.Words),
		Exact:     wordReports(nil, run.Exact),
		Converged: run.Converged,
		NoMarker:  run.NoMarker,
		Changed:   run.Changed,
		Err:       run.Err,
	}
}

// ReproducibilityReport is the printable model of a reproducibility check
type ReproducibilityReport struct {
	RunID       uuid.UUID `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	*analysis.ReproducibilityResult
}

// NewReproducibilityReport wraps a reproducibility result for rendering
func NewReproducibilityReport(runID uuid.UUID, r *analysis.ReproducibilityResult) *ReproducibilityReport {
	return &ReproducibilityReport{RunID: runID, GeneratedAt: time.Now(), ReproducibilityResult: r}
}

// Render writes the reproducibility report in the given format
func (r *ReproducibilityReport) Render(w io.Writer, format string) error {
	return render(w, format, "reproducibility", r)
}

// CArray renders w as a C byte array initialiser, e.g. {0x41, 0x42}
func CArray(w []byte) string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, b := range w {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "0x%02x", b)
	}
	sb.WriteByte('}')
	return sb.String()
}

// Printable renders w as a quoted Go string with escapes for non-printable bytes
func Printable(w []byte) string {
	return strconv.Quote(string(w))
}

var templates = template.Must(template.New("report").Funcs(template.FuncMap{
	"join": strings.Join,
	"percent": func(f float64) string {
		return fmt.Sprintf("%.0f%%", f*100)
	},
	"mark": func(d EntryDiag) string {
		if d.Matches() {
			return "="
		}
		return "!"
	},
}).Parse(reportTemplate))

func init() {
	template.Must(templates.New("holdout").Parse(holdoutTemplate))
	template.Must(templates.New("reproducibility").Parse(reproducibilityTemplate))
}

// Render writes the report in the given format
func (r *Report) Render(w io.Writer, format string) error {
	return render(w, format, "report", r)
}

// Render writes the holdout report in the given format
func (r *HoldoutReport) Render(w io.Writer, format string) error {
	return render(w, format, "holdout", r)
}

func render(w io.Writer, format, name string, v interface{}) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatText, "":
		if err := templates.ExecuteTemplate(w, name, v); err != nil {
			return fmt.Errorf("failed to execute template: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: unsupported report format %q", core.ErrConfiguration, format)
	}
}
