// Package storage persists the task graph as a single JSON document
// on disk. Writes go through the atomic file writer so a crash at any
// point leaves either the old document or the new one, never a torn
// file. Cross-process exclusion uses a sidecar flock.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/taskloom/taskloom/internal/atomicfile"
	"github.com/taskloom/taskloom/internal/configfile"
	"github.com/taskloom/taskloom/internal/graph"
	"github.com/taskloom/taskloom/internal/index"
)

// DefaultFileName is the graph document inside a project directory.
const DefaultFileName = "tasks.json"

// Store binds a graph document path to its loaded state.
type Store struct {
	path    string
	backups int
	graph   *graph.Graph
	index   *index.Manager
}

// Open loads the graph at path. A missing file yields an empty graph
// named after the parent directory; any other read or decode failure
// is returned as-is so the caller can distinguish corruption from
// absence.
func Open(path string) (*Store, error) {
	s := &Store{path: path, backups: atomicfile.DefaultBackupCount, index: index.New()}

	data, err := atomicfile.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.graph = graph.New(projectName(path))
			s.index.Rebuild(s.graph)
			return s, nil
		}
		return nil, err
	}

	var snap graph.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	g, err := graph.FromSnapshot(&snap)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	s.graph = g
	s.index.Rebuild(g)
	return s, nil
}

// Path returns the document path backing this store.
func (s *Store) Path() string { return s.path }

// Graph returns the loaded graph.
func (s *Store) Graph() *graph.Graph { return s.graph }

// Index returns the derived index manager for the loaded graph.
func (s *Store) Index() *index.Manager { return s.index }

// SetBackupCount overrides how many rotated backups Save keeps.
func (s *Store) SetBackupCount(n int) {
	if n > 0 {
		s.backups = n
	}
}

// Save writes the current graph back to disk atomically, rotating
// backups of the previous document.
func (s *Store) Save() error {
	return atomicfile.WriteJSON(s.path, s.graph.Snapshot(), s.backups)
}

// Reindex rebuilds the derived indexes from the graph. Call after
// bulk mutations that bypassed UpdateTask.
func (s *Store) Reindex() {
	s.index.Rebuild(s.graph)
}

// projectName derives a default project name from the document path,
// skipping over the .taskloom directory itself.
func projectName(path string) string {
	dir := filepath.Dir(path)
	if filepath.Base(dir) == configfile.DirName {
		dir = filepath.Dir(dir)
	}
	name := filepath.Base(dir)
	if name == "." || name == string(filepath.Separator) {
		return "taskloom"
	}
	return name
}
