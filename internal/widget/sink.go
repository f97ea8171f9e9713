package widget

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// PayloadFile is the file name FileSink writes inside its directory.
const PayloadFile = "widget.json"

// Sink mirrors payloads into a store the widget surface can read.
type Sink interface {
	Write(ctx context.Context, p Payload) error
	// Clear removes any mirrored payload (no active items).
	Clear(ctx context.Context) error
}

// FileSink writes the payload as JSON into a shared directory, the desktop
// stand-in for a platform app-group container.
type FileSink struct {
	Dir string
}

// NewFileSink returns a FileSink for dir.
func NewFileSink(dir string) *FileSink {
	return &FileSink{Dir: dir}
}

func (s *FileSink) path() string {
	return filepath.Join(s.Dir, PayloadFile)
}

// Write replaces the payload file atomically so readers never see a partial write.
func (s *FileSink) Write(ctx context.Context, p Payload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create widget dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.Dir, PayloadFile+".*")
	if err != nil {
		return fmt.Errorf("create temp payload: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp payload: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp payload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp payload: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path()); err != nil {
		return fmt.Errorf("install payload: %w", err)
	}
	return nil
}

// Clear removes the payload file. A missing file is not an error.
func (s *FileSink) Clear(ctx context.Context) error {
	if err := os.Remove(s.path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove payload: %w", err)
	}
	return nil
}

// Read returns the mirrored payload, or nil when there is none.
func (s *FileSink) Read() (*Payload, error) {
	data, err := os.ReadFile(s.path())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return &p, nil
}
