// Package atomicfile provides crash-safe file writes: content goes to
// a temp file in the target's directory (same volume, so the final
// step is an atomic rename, not a copy), the previous version is
// copied to a timestamped backup, and only the configured number of
// backups is retained. A crash before the rename leaves the prior file
// intact; a crash after leaves the new file intact. There is no state
// where the target is truncated or half-written.
package atomicfile

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// DefaultBackupCount is how many rotating backups Write keeps when the
// caller passes a negative count.
const DefaultBackupCount = 3

// backupTimeLayout orders backup filenames chronologically when sorted
// lexically.
const backupTimeLayout = "20060102T150405.000000000"

// FileError wraps an I/O or serialization failure at the persistence
// boundary. It always names the path involved.
type FileError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Write atomically replaces the file at path with data, keeping up to
// backups timestamped copies of the previous content (0 disables
// backups, negative means DefaultBackupCount). On any failure the temp
// file is removed and the target is left exactly as it was.
func Write(path string, data []byte, backups int) error {
	if backups < 0 {
		backups = DefaultBackupCount
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return &FileError{Op: "create directory for", Path: path, Err: err}
	}

	base := filepath.Base(path)
	tmp, err := os.CreateTemp(dir, base+".tmp.*")
	if err != nil {
		return &FileError{Op: "create temp file for", Path: path, Err: err}
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	n, err := tmp.Write(data)
	if err != nil {
		return &FileError{Op: "write temp file for", Path: path, Err: err}
	}
	if n != len(data) {
		return &FileError{Op: "write temp file for", Path: path, Err: fmt.Errorf("short write: %d of %d bytes", n, len(data))}
	}
	if err := tmp.Sync(); err != nil {
		return &FileError{Op: "sync temp file for", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &FileError{Op: "close temp file for", Path: path, Err: err}
	}

	if backups > 0 {
		if err := backupCurrent(path); err != nil {
			return err
		}
		if err := rotateBackups(path, backups); err != nil {
			return err
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return &FileError{Op: "replace", Path: path, Err: err}
	}
	if err := os.Chmod(path, 0600); err != nil {
		return &FileError{Op: "set permissions on", Path: path, Err: err}
	}
	return nil
}

// WriteJSON marshals v with indentation and writes it atomically.
func WriteJSON(path string, v any, backups int) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return &FileError{Op: "encode", Path: path, Err: err}
	}
	return Write(path, append(data, '\n'), backups)
}

// Read returns the file's contents, converting failures into a typed
// FileError.
func Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path) // #nosec G304 - controlled path from config
	if err != nil {
		return nil, &FileError{Op: "read", Path: path, Err: err}
	}
	return data, nil
}

// ReadJSON reads and unmarshals the file into v. Parse failures carry
// the path just like I/O failures.
func ReadJSON(path string, v any) error {
	data, err := Read(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &FileError{Op: "parse", Path: path, Err: err}
	}
	return nil
}

// backupCurrent copies the existing target, if any, to a timestamped
// .bak file beside it.
func backupCurrent(path string) error {
	src, err := os.Open(path) // #nosec G304 - controlled path from config
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return &FileError{Op: "open for backup", Path: path, Err: err}
	}
	defer src.Close() //nolint:errcheck

	backup := fmt.Sprintf("%s.bak.%s", path, time.Now().UTC().Format(backupTimeLayout))
	dst, err := os.OpenFile(backup, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600) // #nosec G304
	if err != nil {
		return &FileError{Op: "create backup of", Path: path, Err: err}
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(backup)
		return &FileError{Op: "copy backup of", Path: path, Err: err}
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(backup)
		return &FileError{Op: "close backup of", Path: path, Err: err}
	}
	return nil
}

// rotateBackups deletes all but the newest keep backups, ordered by
// filename (the timestamp suffix sorts chronologically).
func rotateBackups(path string, keep int) error {
	backups, err := ListBackups(path)
	if err != nil {
		return err
	}
	for i := keep; i < len(backups); i++ {
		if err := os.Remove(backups[i]); err != nil {
			return &FileError{Op: "rotate backups of", Path: path, Err: err}
		}
	}
	return nil
}

// ListBackups returns the backup files for path, newest first.
func ListBackups(path string) ([]string, error) {
	dir := filepath.Dir(path)
	prefix := filepath.Base(path) + ".bak."
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &FileError{Op: "list backups of", Path: path, Err: err}
	}
	var backups []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), prefix) {
			backups = append(backups, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(backups)))
	return backups, nil
}
