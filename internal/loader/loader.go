// Package loader turns files on disk into documents.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"ragqa/internal/domain"
)

// ErrNoDocuments is returned when the inputs match no supported file.
var ErrNoDocuments = errors.New("no .txt, .md or .pdf documents found")

// Supported reports whether path has an extension the loader can read.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".pdf":
		return true
	}
	return false
}

// Load expands globs and directories in paths and reads every supported
// file. Documents are sorted by path and identified by it.
func Load(paths []string) ([]domain.Document, error) {
	files := map[string]struct{}{}
	for _, p := range paths {
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", p, err)
		}
		if matches == nil {
			matches = []string{p}
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil {
				return nil, err
			}
			if !info.IsDir() {
				if Supported(m) {
					files[filepath.Clean(m)] = struct{}{}
				}
				continue
			}
			err = filepath.WalkDir(m, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !d.IsDir() && Supported(path) {
					files[filepath.Clean(path)] = struct{}{}
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		}
	}
	if len(files) == 0 {
		return nil, ErrNoDocuments
	}
	sorted := make([]string, 0, len(files))
	for f := range files {
		sorted = append(sorted, f)
	}
	sort.Strings(sorted)

	docs := make([]domain.Document, 0, len(sorted))
	for _, f := range sorted {
		doc, err := ReadFile(f)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// ReadFile reads a single supported file.
func ReadFile(path string) (domain.Document, error) {
	var text string
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		t, err := readPDF(path)
		if err != nil {
			return domain.Document{}, fmt.Errorf("read pdf %s: %w", path, err)
		}
		text = t
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return domain.Document{}, err
		}
		text = string(data)
	}
	path = filepath.Clean(path)
	return domain.Document{ID: path, Path: path, Text: text}, nil
}

func readPDF(path string) (string, error) {
	f, rdr, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	b, err := rdr.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, b); err != nil {
		return "", err
	}
	return buf.String(), nil
}
