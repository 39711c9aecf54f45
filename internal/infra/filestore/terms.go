package filestore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"photo-curator-service/internal/domain"
)

// TermsFile is the operator's newline separated search term list.
type TermsFile struct {
	path string
}

// NewTermsFile creates a TermsFile for path.
func NewTermsFile(path string) *TermsFile {
	return &TermsFile{path: path}
}

// Path returns the file location.
func (f *TermsFile) Path() string {
	return f.path
}

// Read returns the file content. A missing file reads as empty.
func (f *TermsFile) Read() (string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading terms: %w", err)
	}

	return string(data), nil
}

// Lines returns the raw lines of the file.
func (f *TermsFile) Lines() ([]string, error) {
	text, err := f.Read()
	if err != nil {
		return nil, err
	}

	return domain.SplitLines(text), nil
}

// Write replaces the file content, normalizing line endings.
func (f *TermsFile) Write(text string) error {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if text != "" && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}

	if err := WriteFileAtomic(f.path, []byte(text)); err != nil {
		return fmt.Errorf("writing terms: %w", err)
	}

	return nil
}
