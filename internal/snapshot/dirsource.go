package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// DirSource reads snapshots from a local directory tree {root}/{date}/{file}.
type DirSource struct {
	root     string
	maxBytes int64
}

// NewDirSource creates a DirSource rooted at root.
func NewDirSource(root string, maxBytes int64) *DirSource {
	return &DirSource{root: root, maxBytes: maxBytes}
}

// Name implements Source.
func (s *DirSource) Name() string {
	return "dir"
}

// Fetch implements Source.
func (s *DirSource) Fetch(ctx context.Context, date, filename string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !isPlainName(date) || !isPlainName(filename) {
		return nil, fmt.Errorf("invalid snapshot path %q/%q", date, filename)
	}

	f, err := os.Open(filepath.Join(s.root, date, filename))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s/%s: %w", date, filename, ErrNotFound)
		}
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	return readLimited(f, s.maxBytes)
}

type captureFile struct {
	name string
	ts   time.Time
}

// List returns the capture filenames present in a date folder, oldest first.
// Files not named tle_HHMMSS.txt are ignored.
func (s *DirSource) List(date time.Time) ([]string, error) {
	dir := filepath.Join(s.root, date.Format(DateLayout))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing snapshot dir: %w", err)
	}

	var files []captureFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ts, err := CaptureTime(date, e.Name())
		if err != nil {
			continue
		}
		files = append(files, captureFile{name: e.Name(), ts: ts})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ts.Before(files[j].ts)
	})

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.name
	}
	return names, nil
}

// WriteManifest lists a date folder and writes its index.json.
// Returns the number of files recorded.
func (s *DirSource) WriteManifest(date time.Time) (int, error) {
	names, err := s.List(date)
	if err != nil {
		return 0, err
	}
	if len(names) == 0 {
		return 0, nil
	}

	data, err := EncodeManifest(Manifest{Files: names})
	if err != nil {
		return 0, fmt.Errorf("encoding manifest: %w", err)
	}

	path := filepath.Join(s.root, date.Format(DateLayout), "index.json")
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return 0, fmt.Errorf("writing manifest: %w", err)
	}
	return len(names), nil
}

// isPlainName reports whether name is a single path element.
func isPlainName(name string) bool {
	return name != "" && name != "." && name != ".." && filepath.Base(name) == name
}
