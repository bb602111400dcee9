package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Transaction writes a group of files so that either all of them land or
// none do. Content is staged in a temp directory; Commit backs up the files
// it replaces and restores them if any write fails.
type Transaction struct {
	mu         sync.Mutex
	tempDir    string
	writes     []stagedWrite
	committed  bool
	rolledBack bool
}

type stagedWrite struct {
	path    string
	staged  string
	backup  string
	mode    os.FileMode
	applied bool
}

// NewTransaction creates an empty transaction.
func NewTransaction() (*Transaction, error) {
	tempDir, err := os.MkdirTemp("", "misetui-tx-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	return &Transaction{tempDir: tempDir}, nil
}

// Write stages content for path.
func (tx *Transaction) Write(path string, content []byte, mode os.FileMode) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.committed || tx.rolledBack {
		return fmt.Errorf("transaction already finalized")
	}
	staged := filepath.Join(tx.tempDir, fmt.Sprintf("write-%d", len(tx.writes)))
	if err := os.WriteFile(staged, content, mode); err != nil {
		return fmt.Errorf("failed to stage %s: %w", path, err)
	}
	tx.writes = append(tx.writes, stagedWrite{path: path, staged: staged, mode: mode})
	return nil
}

// Paths returns the staged target paths in order.
func (tx *Transaction) Paths() []string {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	out := make([]string, len(tx.writes))
	for i, w := range tx.writes {
		out[i] = w.path
	}
	return out
}

// Commit applies every staged write. On failure the files already written
// are restored and the error is returned.
func (tx *Transaction) Commit() error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.committed {
		return nil
	}
	if tx.rolledBack {
		return fmt.Errorf("transaction was rolled back")
	}

	for i := range tx.writes {
		w := &tx.writes[i]
		if _, err := os.Stat(w.path); err == nil {
			w.backup = filepath.Join(tx.tempDir, fmt.Sprintf("backup-%d", i))
			if err := copyFile(w.path, w.backup); err != nil {
				tx.rollback()
				return fmt.Errorf("failed to back up %s: %w", w.path, err)
			}
		}
	}

	for i := range tx.writes {
		w := &tx.writes[i]
		data, err := os.ReadFile(w.staged)
		if err == nil {
			err = AtomicWrite(w.path, data, w.mode)
		}
		if err != nil {
			tx.rollback()
			return fmt.Errorf("failed to write %s: %w", w.path, err)
		}
		w.applied = true
	}

	tx.committed = true
	tx.cleanup()
	return nil
}

// Rollback discards the staged writes. It is a no-op after Commit.
func (tx *Transaction) Rollback() {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.committed || tx.rolledBack {
		return
	}
	tx.rollback()
}

// rollback undoes applied writes in reverse order. Callers hold mu.
func (tx *Transaction) rollback() {
	for i := len(tx.writes) - 1; i >= 0; i-- {
		w := &tx.writes[i]
		if !w.applied {
			continue
		}
		if w.backup != "" {
			_ = copyFile(w.backup, w.path)
		} else {
			_ = os.Remove(w.path)
		}
	}
	tx.rolledBack = true
	tx.cleanup()
}

func (tx *Transaction) cleanup() {
	if tx.tempDir != "" {
		_ = os.RemoveAll(tx.tempDir)
		tx.tempDir = ""
	}
}

// copyFile copies src to dst keeping the source permissions.
func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	info, err := os.Stat(src)
	if err != nil {
		return os.WriteFile(dst, data, 0o644)
	}
	return os.WriteFile(dst, data, info.Mode())
}
