// Package output renders the result of a synchronization run in various
// formats (pretty, plain, json, yaml).
//
// Formatters are kept in a registry so the CLI can select one by name:
//
//	formatter, err := output.Get("pretty")
//	if err != nil {
//	    return err
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, output.FromReport(report)); err != nil {
//	    return err
//	}
package output

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/jamesainslie/syncer/pkg/syncer/controller"
)

// Run statuses.
const (
	StatusFinished = "finished"
	StatusFailed   = "failed"
)

// Result is the formatter view of one run.
type Result struct {
	ID      string `json:"id" yaml:"id"`
	Status  string `json:"status" yaml:"status"`
	Message string `json:"message" yaml:"message"`

	// ErrorKind is set when Status is StatusFailed.
	ErrorKind string `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`

	Decision string `json:"decision" yaml:"decision"`
	Outcome  string `json:"outcome" yaml:"outcome"`
	DryRun   bool   `json:"dry_run" yaml:"dry_run"`

	LocalFile  string `json:"local_file" yaml:"local_file"`
	RemoteFile string `json:"remote_file" yaml:"remote_file"`

	LocalFingerprint  string `json:"local_fingerprint" yaml:"local_fingerprint"`
	RemoteFingerprint string `json:"remote_fingerprint" yaml:"remote_fingerprint"`

	// TimesCompared reports whether modification times were consulted.
	TimesCompared bool          `json:"times_compared" yaml:"times_compared"`
	LocalModTime  time.Time     `json:"local_mod_time" yaml:"local_mod_time"`
	RemoteModTime time.Time     `json:"remote_mod_time" yaml:"remote_mod_time"`
	Delta         time.Duration `json:"delta" yaml:"delta"`

	BackupPath string `json:"backup_path" yaml:"backup_path"`
	BackupSize int64  `json:"backup_size" yaml:"backup_size"`

	StartedAt time.Time     `json:"started_at" yaml:"started_at"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
}

// FromReport projects a controller report into a Result.
func FromReport(r *controller.Report) *Result {
	res := &Result{
		ID:                r.ID,
		Status:            StatusFinished,
		Message:           r.Message,
		Decision:          r.Decision.String(),
		Outcome:           r.Outcome.String(),
		DryRun:            r.DryRun,
		LocalFile:         r.Target.LocalFile,
		RemoteFile:        r.Target.RemoteFile(),
		LocalFingerprint:  r.LocalFingerprint.String(),
		RemoteFingerprint: r.RemoteFingerprint.String(),
		TimesCompared:     r.TimesCompared,
		LocalModTime:      r.LocalModTime,
		RemoteModTime:     r.RemoteModTime,
		Delta:             r.Delta,
		BackupPath:        r.BackupPath,
		StartedAt:         r.StartedAt,
		Duration:          r.Duration(),
	}
	if r.Err != nil {
		res.Status = StatusFailed
		res.ErrorKind = r.Err.Kind.String()
	}
	if r.BackupPath != "" {
		if info, err := os.Stat(r.BackupPath); err == nil {
			res.BackupSize = info.Size()
		}
	}
	return res
}

// Failed reports whether the run failed.
func (r *Result) Failed() bool {
	return r.Status == StatusFailed
}

// Formatter is the interface that all output formatters must implement.
type Formatter interface {
	// Format writes the formatted output to the buffer.
	Format(w *bytes.Buffer, r *Result) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory to the registry, replacing any existing
// formatter with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}
