// Package report accumulates one record per processed file and saves the run
// as a structured log (JSON or YAML, chosen by file extension).
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Action tags written to the log.
const (
	ActionMoved              = "moved"
	ActionAlreadyNamed       = "already-named"
	ActionDuplicateKept      = "duplicate-kept"
	ActionDuplicateDeleted   = "duplicate-deleted"
	ActionDuplicatePreserved = "duplicate-preserved"
	ActionCollisionLimit     = "collision-limit"
	ActionSkipped            = "skipped"
	ActionFailed             = "failed"
)

// Record describes what happened to one input file.
type Record struct {
	Origin      string `json:"origin" yaml:"origin"`
	Destination string `json:"destination,omitempty" yaml:"destination,omitempty"`
	Name        string `json:"name,omitempty" yaml:"name,omitempty"` // digest or token
	Action      string `json:"action" yaml:"action"`
	Error       string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Run is the persisted log document.
type Run struct {
	ID       string    `json:"id" yaml:"id"`
	Started  time.Time `json:"started" yaml:"started"`
	Finished time.Time `json:"finished" yaml:"finished"`
	Strategy string    `json:"strategy" yaml:"strategy"`
	DryRun   bool      `json:"dry_run" yaml:"dry_run"`
	Records  []Record  `json:"records" yaml:"records"`
}

// Recorder collects records during a run. The zero value is not usable;
// call [NewRecorder].
type Recorder struct {
	mu  sync.Mutex
	run Run
	now func() time.Time
}

// NewRecorder starts a run log with a fresh run id.
func NewRecorder(strategy string, dryRun bool) *Recorder {
	r := &Recorder{now: time.Now}
	r.run = Run{
		ID:       uuid.NewString(),
		Started:  r.now().UTC(),
		Strategy: strategy,
		DryRun:   dryRun,
		Records:  []Record{},
	}
	return r
}

// Add appends rec.
func (r *Recorder) Add(rec Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.run.Records = append(r.run.Records, rec)
}

// Snapshot returns a copy of the run with Finished set to now.
func (r *Recorder) Snapshot() Run {
	r.mu.Lock()
	defer r.mu.Unlock()
	run := r.run
	run.Records = append([]Record(nil), r.run.Records...)
	run.Finished = r.now().UTC()
	return run
}

// Save writes the run to path, as YAML for .yaml/.yml and JSON otherwise.
// The file is written to a temporary name and renamed into place.
func (r *Recorder) Save(path string) error {
	run := r.Snapshot()

	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(run)
	default:
		data, err = json.MarshalIndent(run, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("encode run log: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create run log directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".rname-log-*")
	if err != nil {
		return fmt.Errorf("write run log: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write run log: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write run log: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write run log: %w", err)
	}
	return nil
}

// Load reads a run log written by Save.
func Load(path string) (Run, error) {
	var run Run
	data, err := os.ReadFile(path)
	if err != nil {
		return run, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &run)
	default:
		err = json.Unmarshal(data, &run)
	}
	if err != nil {
		return run, fmt.Errorf("decode run log %s: %w", path, err)
	}
	return run, nil
}
