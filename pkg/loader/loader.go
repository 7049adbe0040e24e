/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: loader.go
Description: Corpus loader. Discovers documents from files, directories and @list files,
derives each document's multiplicity from its file name and builds the ordered corpus.
*/

package loader

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/kleascm/akaylee-repeats/pkg/core"
	"github.com/sirupsen/logrus"
)

// ErrNoCorpus is returned when no file yields a usable entry
var ErrNoCorpus = fmt.Errorf("%w: no usable corpus files", core.ErrConfiguration)

// Loader builds a corpus from the file system
type Loader struct {
	config  core.LoaderConfig
	pattern *regexp.Regexp
	logger  logrus.FieldLogger
}

// New compiles the name pattern, which needs at least one capture group
func New(config core.LoaderConfig, logger logrus.FieldLogger) (*Loader, error) {
	if logger == nil {
		logger = core.DiscardLogger()
	}
	re, err := regexp.Compile(config.NamePattern)
	if err != nil {
		return nil, fmt.Errorf("%w: bad name pattern %q: %v", core.ErrConfiguration, config.NamePattern, err)
	}
	if re.NumSubexp() < 1 {
		return nil, fmt.Errorf("%w: name pattern %q has no capture group", core.ErrConfiguration, config.NamePattern)
	}
	return &Loader{config: config, pattern: re, logger: logger}, nil
}

// Multiplicity returns the product of the integer capture groups matched in name
// The second return is false when the name does not match.
func (l *Loader) Multiplicity(name string) (int, bool) {
	m := l.pattern.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}

	product := 1
	found := false
	for _, group := range m[1:] {
		n, err := strconv.Atoi(group)
		if err != nil {
			continue
		}
		found = true
		if n != 0 && product > math.MaxInt/n {
			return 0, false
		}
		product *= n
	}
	if !found {
		return 0, false
	}
	return product, true
}

// Paths expands the configured paths into a sorted list of distinct files
func (l *Loader) Paths(ctx context.Context) ([]string, error) {
	var files []string
	for _, p := range l.config.Paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		expanded, err := l.expand(ctx, p)
		if err != nil {
			return nil, err
		}
		files = append(files, expanded...)
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

func (l *Loader) expand(ctx context.Context, p string) ([]string, error) {
	if list, ok := strings.CutPrefix(p, "@"); ok {
		return l.readList(ctx, list)
	}

	info, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrConfiguration, err)
	}
	if !info.IsDir() {
		return []string{filepath.Clean(p)}, nil
	}

	var files []string
	err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, filepath.Clean(path))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", p, err)
	}
	return files, nil
}

// readList reads one path per line; blank lines and # comments are ignored
// Relative paths are resolved against the list file's directory.
func (l *Loader) readList(ctx context.Context, list string) ([]string, error) {
	f, err := os.Open(list)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrConfiguration, err)
	}
	defer f.Close()

	var files []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(filepath.Dir(list), line)
		}
		expanded, err := l.expand(ctx, line)
		if err != nil {
			return nil, err
		}
		files = append(files, expanded...)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read list %s: %w", list, err)
	}
	return files, nil
}

// Load reads every usable file into a corpus
// Files whose names do not match, give multiplicity 0 or exceed MaxFileSize are skipped.
func (l *Loader) Load(ctx context.Context) (*core.Corpus, error) {
	paths, err := l.Paths(ctx)
	if err != nil {
		return nil, err
	}

	var entries []core.Entry
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		logger := l.logger.WithField("file", path)

		n, ok := l.Multiplicity(filepath.Base(path))
		if !ok {
			logger.Warn("File name does not match the multiplicity pattern, skipping")
			continue
		}
		if n < 1 {
			logger.WithField("multiplicity", n).Warn("Zero multiplicity, skipping")
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if l.config.MaxFileSize > 0 && info.Size() > l.config.MaxFileSize {
			logger.WithFields(logrus.Fields{
				"size":  info.Size(),
				"limit": l.config.MaxFileSize,
			}).Warn("File too large, skipping")
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		entries = append(entries, core.Entry{Multiplicity: n, Data: data, Label: path})
		logger.WithFields(logrus.Fields{
			"multiplicity": n,
			"size":         len(data),
		}).Debug("Loaded corpus file")
	}

	if len(entries) == 0 {
		return nil, ErrNoCorpus
	}
	corpus, err := core.NewCorpus(entries)
	if err != nil {
		return nil, err
	}
	l.logger.WithFields(logrus.Fields{
		"entries": corpus.Len(),
		"bytes":   corpus.TotalSize(),
	}).Info("Corpus loaded")
	return corpus, nil
}

// IsNoCorpus reports whether err means nothing could be loaded
func IsNoCorpus(err error) bool {
	return errors.Is(err, ErrNoCorpus)
}
