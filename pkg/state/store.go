// Package state implements the directory-backed container record store.
//
// Each container gets one directory under Paths.StateRoot, named by its
// host PID, so an operator can inspect or manually remove a stuck
// container with nothing more than ls, cat, and rm -- no database tooling
// required. Inside that directory a record.json file holds the
// types.Record and a command file holds the container's argv, one
// argument per line, so arguments containing whitespace survive a
// restart of burrow itself.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/cuemby/burrow/pkg/types"
)

const (
	recordFile  = "record.json"
	commandFile = "command"
)

// Store is a directory-backed container record store rooted at a single
// StateRoot directory.
type Store struct {
	root string
}

// New returns a Store rooted at paths.StateRoot, creating the directory
// if it does not already exist.
func New(paths types.Paths) (*Store, error) {
	if err := os.MkdirAll(paths.StateRoot, 0755); err != nil {
		return nil, fmt.Errorf("create state root %q: %w", paths.StateRoot, err)
	}
	return &Store{root: paths.StateRoot}, nil
}

func (s *Store) dirFor(pid int) string {
	return filepath.Join(s.root, strconv.Itoa(pid))
}

// Create writes a new container directory for rec.PID. It fails if a
// directory for that PID already exists.
func (s *Store) Create(rec *types.Record) error {
	if rec.PID <= 0 {
		return fmt.Errorf("create record: PID must be set")
	}
	dir := s.dirFor(rec.PID)
	if err := os.Mkdir(dir, 0755); err != nil {
		return fmt.Errorf("create container directory %q: %w", dir, err)
	}
	if err := writeCommand(dir, rec.Argv); err != nil {
		return err
	}
	if err := writeRecord(dir, rec); err != nil {
		return err
	}
	return nil
}

// Get reads the record for the given PID.
func (s *Store) Get(pid int) (*types.Record, error) {
	dir := s.dirFor(pid)
	return readRecord(dir)
}

// Update overwrites the record.json for an existing container directory.
// It does not rewrite the command file: argv is immutable after Create.
func (s *Store) Update(rec *types.Record) error {
	dir := s.dirFor(rec.PID)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	return writeRecord(dir, rec)
}

// Rename atomically moves a container's state directory from oldPID to
// newPID and rewrites its record.json with rec, so a restarted
// container's on-disk state moves in one step rather than risking a
// crash window between removing the old directory and writing a new
// one. It fails if a directory for newPID already exists.
func (s *Store) Rename(oldPID, newPID int, rec *types.Record) error {
	oldDir := s.dirFor(oldPID)
	newDir := s.dirFor(newPID)
	if err := os.Rename(oldDir, newDir); err != nil {
		return fmt.Errorf("rename container directory %q to %q: %w", oldDir, newDir, err)
	}
	return writeRecord(newDir, rec)
}

// Delete removes a container's entire state directory.
func (s *Store) Delete(pid int) error {
	dir := s.dirFor(pid)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove container directory %q: %w", dir, err)
	}
	return nil
}

// List enumerates every container directory under the state root,
// sorted by PID. It never inspects whether the PID is still alive:
// reaping is the lifecycle manager's job, not the store's.
func (s *Store) List() ([]*types.Record, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read state root %q: %w", s.root, err)
	}

	var pids []int
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		pid, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}
		pids = append(pids, pid)
	}
	sort.Ints(pids)

	recs := make([]*types.Record, 0, len(pids))
	for _, pid := range pids {
		rec, err := s.Get(pid)
		if err != nil {
			continue
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func writeRecord(dir string, rec *types.Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	path := filepath.Join(dir, recordFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %q: %w", path, err)
	}
	return nil
}

func readRecord(dir string) (*types.Record, error) {
	path := filepath.Join(dir, recordFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	var rec types.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal %q: %w", path, err)
	}
	if len(rec.Argv) == 0 {
		if argv, err := readCommand(dir); err == nil {
			rec.Argv = argv
		}
	}
	return &rec, nil
}

func writeCommand(dir string, argv []string) error {
	path := filepath.Join(dir, commandFile)
	data := []byte(strings.Join(argv, "\n") + "\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %q: %w", path, err)
	}
	return nil
}

// readCommand parses the command file. Newer command files are
// newline-delimited; a command file written by a version of burrow
// that whitespace-joined argv falls back to splitting on spaces, which
// loses arguments that originally contained embedded whitespace. The
// one exception is a single-line "/bin/sh -c <script>" command, whose
// script is kept whole as the argument to -c.
func readCommand(dir string) ([]string, error) {
	path := filepath.Join(dir, commandFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return nil, nil
	}
	if strings.Contains(text, "\n") {
		return strings.Split(text, "\n"), nil
	}
	if script, ok := strings.CutPrefix(text, "/bin/sh -c "); ok {
		return []string{"/bin/sh", "-c", script}, nil
	}
	return strings.Fields(text), nil
}
