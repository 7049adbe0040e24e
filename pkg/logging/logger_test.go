/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: logger_test.go
Description: Tests for logger configuration, formatting and log file rotation.
*/

package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultLoggerConfig().Validate())

	cfg := DefaultLoggerConfig()
	cfg.Format = "xml"
	assert.Error(t, cfg.Validate())

	cfg = DefaultLoggerConfig()
	cfg.Level = "chatty"
	assert.Error(t, cfg.Validate())

	cfg = DefaultLoggerConfig()
	cfg.OutputDir = t.TempDir()
	cfg.MaxFiles = 0
	assert.Error(t, cfg.Validate())
}

func TestCustomFormatter(t *testing.T) {
	f := &CustomFormatter{}
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Level:   logrus.InfoLevel,
		Message: "Growth round finished",
		Data: logrus.Fields{
			"word_len":  4,
			"archived":  10,
			"elapsed":   1500 * time.Microsecond,
			"label":     "two words",
			"candidate": []byte("AB"),
			"error":     errors.New("boom"),
		},
	}

	out, err := f.Format(entry)
	require.NoError(t, err)
	assert.Equal(t,
		`INFO  [MINE] Growth round finished archived=10 candidate=4142 elapsed=2ms error="boom" label="two words" word_len=4`+"\n",
		string(out))

	entry.Message = "Something else"
	entry.Data = nil
	entry.Level = logrus.WarnLevel
	out, err = f.Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "WARNING Something else\n", string(out))
}

func TestStageTag(t *testing.T) {
	assert.Equal(t, "MINE", stageTag("Mining finished"))
	assert.Equal(t, "ASSEMBLE", stageTag("Candidate space ready"))
	assert.Equal(t, "ASSEMBLE", stageTag("Pattern retained"))
	assert.Equal(t, "HOLDOUT", stageTag("Holdout run finished"))
	assert.Equal(t, "LOAD", stageTag("Corpus loaded"))
	assert.Equal(t, "", stageTag("Run statistics"))
}

func TestNewLoggerToJSON(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultLoggerConfig()
	cfg.Format = LogFormatJSON
	cfg.Timestamp = false

	l, err := NewLoggerTo(cfg, &buf)
	require.NoError(t, err)
	l.LogRound(3, 4, 2, 10, time.Second)
	require.NoError(t, l.Close())

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "Growth round finished", line["msg"])
	assert.Equal(t, float64(4), line["word_len"])
	assert.Equal(t, float64(2), line["survivors"])
	assert.Empty(t, l.FilePath())
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultLoggerConfig()
	cfg.Format = LogFormatCustom
	cfg.Timestamp = false
	cfg.Level = LogLevelWarning

	l, err := NewLoggerTo(cfg, &buf)
	require.NoError(t, err)
	l.LogPattern(`"AB" [3] "CD"`, "good", []int{2, 3})
	l.LogCandidateSpace(6, 1, 5, 5500, false)
	assert.Empty(t, buf.String())

	l.LogCandidateSpace(6, 1, 50, 541000, true)
	assert.Contains(t, buf.String(), "[ASSEMBLE] Candidate space truncated")
	assert.Contains(t, buf.String(), "size=541000")
}

func TestFileOutputAndCleanup(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"2020-01-01_00-00-00.000", "2020-01-02_00-00-00.000", "2020-01-03_00-00-00.000"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, filePrefix+name+".log"), nil, 0644))
	}

	var buf bytes.Buffer
	cfg := DefaultLoggerConfig()
	cfg.OutputDir = dir
	cfg.MaxFiles = 2
	l, err := NewLoggerTo(cfg, &buf)
	require.NoError(t, err)

	l.LogStats(3, 1, 1, 0, map[string]interface{}{"run_id": "abc"})
	path := l.FilePath()
	require.NotEmpty(t, path)
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Run statistics")
	assert.Contains(t, buf.String(), "Run statistics")

	files, err := filepath.Glob(filepath.Join(dir, filePrefix+"*.log"))
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.True(t, strings.HasSuffix(files[0], "2020-01-03_00-00-00.000.log"))
	assert.Equal(t, path, files[1])
}
