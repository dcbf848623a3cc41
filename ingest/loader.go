// Package ingest loads triple fact files from disk and commits them through
// the audited commit pipeline. Each file is one source document: its path
// determines the document URI used for change attribution and stale-data
// scoping.
package ingest

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/c360studio/semgraph/rdf"
	"github.com/c360studio/semgraph/vocabulary/kg"
)

// maxLineSize bounds a single fact line. Serialized objects can carry long
// literal values, so this is well above typical line lengths.
const maxLineSize = 1 << 20

// FileFacts is the parsed content of one fact file.
type FileFacts struct {
	// Path is the file path as resolved from the glob patterns.
	Path string

	// DocumentURI identifies the file as a source document.
	DocumentURI string

	// Triples are the facts parsed from the file, in file order.
	Triples []rdf.Triple

	// Skipped counts malformed lines that were logged and dropped.
	Skipped int
}

// ResolveFiles expands glob patterns to concrete fact files. Supports both
// single-level (*) and recursive (**) wildcards. The result is sorted and
// deduplicated so repeated runs ingest in a stable order.
func ResolveFiles(patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string

	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}

		// A literal path that exists needs no glob machinery.
		if !strings.ContainsAny(pattern, "*?[{") {
			info, err := os.Stat(pattern)
			if err != nil {
				return nil, fmt.Errorf("resolve %s: %w", pattern, err)
			}
			if info.IsDir() {
				return nil, fmt.Errorf("resolve %s: is a directory, expected a fact file", pattern)
			}
			if _, dup := seen[pattern]; !dup {
				seen[pattern] = struct{}{}
				files = append(files, pattern)
			}
			continue
		}

		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", pattern, err)
		}
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil || info.IsDir() {
				continue
			}
			if _, dup := seen[match]; !dup {
				seen[match] = struct{}{}
				files = append(files, match)
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

// DocumentURI derives the source-document URI for a fact file path. The
// path is slash-normalized and made relative to baseDir when possible, so
// the same file yields the same URI regardless of the invocation directory.
func DocumentURI(baseDir, path string) string {
	rel := path
	if baseDir != "" {
		if r, err := filepath.Rel(baseDir, path); err == nil && !strings.HasPrefix(r, "..") {
			rel = r
		}
	}
	return kg.DocumentNamespace + filepath.ToSlash(rel)
}

// LoadFile parses one fact file. Malformed lines are logged and skipped;
// only I/O failures abort the load.
func LoadFile(path, baseDir string, logger *slog.Logger) (*FileFacts, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fact file: %w", err)
	}
	defer f.Close()

	facts := &FileFacts{
		Path:        path,
		DocumentURI: DocumentURI(baseDir, path),
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		triple, err := rdf.ParseLine(scanner.Text())
		if err != nil {
			facts.Skipped++
			logger.Warn("Skipping malformed fact line",
				"path", path,
				"line", lineNo,
				"error", err)
			continue
		}
		if triple == nil {
			continue // blank line, comment, or prefix directive
		}
		facts.Triples = append(facts.Triples, *triple)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read fact file %s: %w", path, err)
	}

	return facts, nil
}
