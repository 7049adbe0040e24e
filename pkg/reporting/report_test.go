/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: report_test.go
Description: Tests for report construction, rendering and archive files.
*/

package reporting_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/kleascm/akaylee-repeats/pkg/analysis"
	"github.com/kleascm/akaylee-repeats/pkg/core"
	"github.com/kleascm/akaylee-repeats/pkg/inference"
	"github.com/kleascm/akaylee-repeats/pkg/reporting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gappedCorpus holds "AB", three varying bytes and "CD" repeated 2, 3 and 4 times
func gappedCorpus(t *testing.T) *core.Corpus {
	t.Helper()
	next := byte(0x80)
	unique := func() byte {
		next++
		return next
	}
	var entries []core.Entry
	for _, n := range []int{2, 3, 4} {
		var doc []byte
		for i := 0; i < n; i++ {
			doc = append(doc, unique(), 'A', 'B', unique(), unique(), unique(), 'C', 'D')
		}
		doc = append(doc, unique())
		entries = append(entries, core.Entry{Multiplicity: n, Data: doc, Label: filepath.Join("docs", string(rune('a'+n)))})
	}
	corpus, err := core.NewCorpus(entries)
	require.NoError(t, err)
	return corpus
}

func runPipeline(t *testing.T, corpus *core.Corpus) *inference.Result {
	t.Helper()
	cfg := core.DefaultConfig()
	cfg.Miner.Workers = 2
	cfg.Assembler.Workers = 2
	cfg.Assembler.MaxGap = 5
	cfg.Assembler.Limit = 3
	p, err := inference.NewPipeline(cfg)
	require.NoError(t, err)
	res, err := p.Run(context.Background(), corpus, true)
	require.NoError(t, err)
	return res
}

func TestCArrayAndPrintable(t *testing.T) {
	assert.Equal(t, "{0x41, 0x42}", reporting.CArray([]byte("AB")))
	assert.Equal(t, "{}", reporting.CArray(nil))
	assert.Equal(t, `"A\x00\n"`, reporting.Printable([]byte("A\x00\n")))
}

func TestNewReport(t *testing.T) {
	corpus := gappedCorpus(t)
	res := runPipeline(t, corpus)

	rep := reporting.NewReport(res, 1)
	assert.Equal(t, res.RunID, rep.RunID)
	assert.Len(t, rep.Entries, 3)
	assert.Equal(t, corpus.TotalSize(), rep.TotalBytes)
	assert.False(t, rep.NoMarker)
	assert.True(t, rep.Converged)
	assert.LessOrEqual(t, len(rep.Words), 1)
	assert.GreaterOrEqual(t, rep.WordCount, len(rep.Words))

	require.NotNil(t, rep.Assembly)
	require.NotEmpty(t, rep.Assembly.Good)
	best := rep.Assembly.Good[0]
	assert.Equal(t, `"AB" [3] "CD"`, best.Pattern)
	assert.Equal(t, "good", best.Class)
	assert.Equal(t, []string{"{0x41, 0x42}", "{0x43, 0x44}"}, best.Literals)
	assert.Equal(t, []int{3}, best.Gaps)
	require.Len(t, best.Entries, 3)
	for _, d := range best.Entries {
		assert.True(t, d.Matches(), "entry %d", d.Index)
	}
}

func TestRenderText(t *testing.T) {
	rep := reporting.NewReport(runPipeline(t, gappedCorpus(t)), 0)

	var buf bytes.Buffer
	require.NoError(t, rep.Render(&buf, reporting.FormatText))
	out := buf.String()
	assert.Contains(t, out, "Corpus: 3 documents")
	assert.Contains(t, out, "Good patterns")
	assert.Contains(t, out, `"AB" [3] "CD"`)
	assert.Contains(t, out, "literals: {0x41, 0x42} {0x43, 0x44}")
	assert.Contains(t, out, "expected=4 observed=4")
	assert.NotContains(t, out, "No marker found")
}

func TestRenderNoMarker(t *testing.T) {
	corpus, err := core.NewCorpus([]core.Entry{
		{Multiplicity: 2, Data: []byte("abc"), Label: "a"},
		{Multiplicity: 2, Data: []byte("xyz"), Label: "b"},
	})
	require.NoError(t, err)
	p, err := inference.NewPipeline(nil)
	require.NoError(t, err)
	res, err := p.Run(context.Background(), corpus, true)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, reporting.NewReport(res, 0).Render(&buf, ""))
	assert.Contains(t, buf.String(), "No marker found")
	assert.NotContains(t, buf.String(), "Good patterns")
}

func TestRenderSeedRoundExhausted(t *testing.T) {
	p, err := inference.NewPipeline(nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := p.Run(ctx, gappedCorpus(t), true)
	require.NoError(t, err)

	rep := reporting.NewReport(res, 0)
	assert.True(t, rep.Exhausted)
	assert.Zero(t, rep.WordCount)

	var buf bytes.Buffer
	require.NoError(t, rep.Render(&buf, reporting.FormatText))
	assert.Contains(t, buf.String(), "Mining budget exhausted before the seed round finished")
	assert.NotContains(t, buf.String(), "No marker found")
	assert.NotContains(t, buf.String(), "Final words")
}

func TestRenderJSON(t *testing.T) {
	rep := reporting.NewReport(runPipeline(t, gappedCorpus(t)), 0)

	var buf bytes.Buffer
	require.NoError(t, rep.Render(&buf, reporting.FormatJSON))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, rep.RunID.String(), decoded["run_id"])
	assert.Contains(t, decoded, "assembly")
	assert.Contains(t, decoded, "words")
}

func TestRenderUnsupportedFormat(t *testing.T) {
	rep := &reporting.Report{RunID: uuid.New()}
	err := rep.Render(&bytes.Buffer{}, "yaml")
	assert.ErrorIs(t, err, core.ErrConfiguration)
}

func TestHoldoutReport(t *testing.T) {
	entries := []core.Entry{
		{Multiplicity: 2, Data: []byte("\x80MARK\x81MARK\x82"), Label: "a"},
		{Multiplicity: 3, Data: []byte("\x80MARK\x81MARK\x82MARK\x83"), Label: "b"},
		{Multiplicity: 3, Data: []byte("\x80MARK\x81MARK\x82"), Label: "bad"},
	}
	corpus, err := core.NewCorpus(entries)
	require.NoError(t, err)
	p, err := inference.NewPipeline(nil)
	require.NoError(t, err)

	h, err := analysis.NewHoldoutAnalyzer(p, nil).Run(context.Background(), corpus, 1)
	require.NoError(t, err)

	rep := reporting.NewHoldoutReport(uuid.New(), h)
	assert.Equal(t, 1, rep.K)
	assert.Len(t, rep.Runs, 3)
	assert.Equal(t, 1, rep.Outliers)

	var buf bytes.Buffer
	require.NoError(t, rep.Render(&buf, reporting.FormatText))
	assert.Contains(t, buf.String(), "Without bad")
	assert.Contains(t, buf.String(), "CHANGED")
	assert.Contains(t, buf.String(), "{0x4d, 0x41, 0x52, 0x4b}")
}

func TestArchiveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.json")
	words := [][]byte{[]byte("MARK"), {0x00, 0xff}, []byte("A")}
	require.NoError(t, reporting.WriteArchive(path, words))

	got, err := reporting.ReadArchive(path)
	require.NoError(t, err)
	assert.Equal(t, words, got)

	require.NoError(t, os.WriteFile(path, []byte(`{"count":1,"words":["zz"]}`), 0644))
	_, err = reporting.ReadArchive(path)
	assert.ErrorIs(t, err, core.ErrConfiguration)

	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0644))
	_, err = reporting.ReadArchive(path)
	assert.ErrorIs(t, err, core.ErrConfiguration)
}
