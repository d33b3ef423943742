package journal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrPartialWrite marks an append that did not fully reach stable storage.
// The batch may be partially present in the file; the caller must not
// remove the source entries and should retry the whole batch later.
var ErrPartialWrite = errors.New("partial journal write")

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Writer appends batches of serialized events to partition files.
type Writer struct{}

// NewWriter creates a Writer.
func NewWriter() *Writer { return &Writer{} }

// AppendBatch opens the file at path in append mode (creating parent
// directories as needed), writes each line newline-terminated, and flushes
// to stable storage before returning. All-or-nothing from the caller's
// perspective: any failure is reported as ErrPartialWrite.
func (w *Writer) AppendBatch(ctx context.Context, path string, lines []string) error {
	if len(lines) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("append %s: %w: %v", path, ErrPartialWrite, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("append %s: %w: %v", path, ErrPartialWrite, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, filePerm)
	if err != nil {
		return fmt.Errorf("append %s: %w: %v", path, ErrPartialWrite, err)
	}
	bw := bufio.NewWriter(f)
	for _, line := range lines {
		if _, err := bw.WriteString(line); err != nil {
			f.Close()
			return fmt.Errorf("append %s: %w: %v", path, ErrPartialWrite, err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			f.Close()
			return fmt.Errorf("append %s: %w: %v", path, ErrPartialWrite, err)
		}
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("append %s: %w: %v", path, ErrPartialWrite, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("append %s: %w: %v", path, ErrPartialWrite, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("append %s: %w: %v", path, ErrPartialWrite, err)
	}
	return nil
}
