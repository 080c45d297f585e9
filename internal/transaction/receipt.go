// Package transaction guards an installation root against concurrent
// installer runs and records what each run installed.
package transaction

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Mode says how the toolchain binaries were produced.
type Mode string

const (
	ModeRelease Mode = "release"
	ModeSource  Mode = "source"
)

const receiptFileName = "foundryup-receipt.json"

// Receipt records a completed installation. The latest receipt lives at
// the installation root and tells a later run (or a curious user) what
// is currently installed and where it came from.
type Receipt struct {
	Version   int          `json:"version"` // schema version
	ID        string       `json:"id"`
	Mode      Mode         `json:"mode"`
	Repo      string       `json:"repo"`
	Ref       string       `json:"ref"` // release version or source branch
	Platform  string       `json:"platform,omitempty"`
	Arch      string       `json:"arch,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
	Tools     []ToolRecord `json:"tools"`
}

// ToolRecord is one installed binary.
type ToolRecord struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// NewReceipt creates a receipt for a finished install.
func NewReceipt(mode Mode, repo, ref string) *Receipt {
	return &Receipt{
		Version:   1,
		ID:        uuid.New().String(),
		Mode:      mode,
		Repo:      repo,
		Ref:       ref,
		Timestamp: time.Now().UTC(),
	}
}

// AddTool records an installed binary and its final location.
func (r *Receipt) AddTool(name, path string) {
	r.Tools = append(r.Tools, ToolRecord{Name: name, Path: path})
}

// Save writes the receipt to the installation root atomically,
// replacing any receipt from a previous run.
func (r *Receipt) Save(rootDir string) error {
	if err := os.MkdirAll(rootDir, 0755); err != nil {
		return fmt.Errorf("create installation root: %w", err)
	}

	finalPath := filepath.Join(rootDir, receiptFileName)
	tmpPath := finalPath + ".tmp"

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal receipt: %w", err)
	}

	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write temporary receipt: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename receipt: %w", err)
	}

	return nil
}

// LoadReceipt reads the receipt from an installation root. A missing
// receipt returns os.ErrNotExist via the underlying read.
func LoadReceipt(rootDir string) (*Receipt, error) {
	data, err := os.ReadFile(filepath.Join(rootDir, receiptFileName))
	if err != nil {
		return nil, fmt.Errorf("read receipt: %w", err)
	}

	var r Receipt
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("unmarshal receipt: %w", err)
	}

	return &r, nil
}
