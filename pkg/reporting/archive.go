/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: archive.go
Description: Archive dump and load. Persists every word a mining run ever accepted as a
flat JSON list of hex strings so a later run can reuse it as an assembler vocabulary.
*/

package reporting

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/kleascm/akaylee-repeats/pkg/core"
)

// ArchiveFile is the on-disk form of a word archive
type ArchiveFile struct {
	Count int      `json:"count"`
	Words []string `json:"words"`
}

// WriteArchive writes the words as hex strings to path
func WriteArchive(path string, words [][]byte) error {
	file := ArchiveFile{Count: len(words), Words: make([]string, len(words))}
	for i, w := range words {
		file.Words[i] = hex.EncodeToString(w)
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal archive: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write archive: %w", err)
	}
	return nil
}

// ReadArchive loads words written by WriteArchive
func ReadArchive(path string) ([][]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive: %w", err)
	}
	var file ArchiveFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: malformed archive %s: %v", core.ErrConfiguration, path, err)
	}

	words := make([][]byte, 0, len(file.Words))
	for i, s := range file.Words {
		w, err := hex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("%w: archive word %d is not hex: %v", core.ErrConfiguration, i, err)
		}
		if len(w) > 0 {
			words = append(words, w)
		}
	}
	return words, nil
}
