// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/goccy/go-json"

	"github.com/tomtom215/gantry/internal/config"
	"github.com/tomtom215/gantry/internal/logging"
	"github.com/tomtom215/gantry/internal/metrics"
	"github.com/tomtom215/gantry/internal/tabular"
)

// backupDir is the subdirectory rotated artifacts move into.
const backupDir = "previous"

// Store reads and writes model artifacts under one location. It also
// accumulates the train report that gets folded into the metadata of
// the next Dump.
type Store struct {
	location string
	clock    clock.Clock

	mu     sync.Mutex
	report map[string]any
}

// Option configures a Store.
type Option func(*Store)

// WithClock injects the clock used for created timestamps, metrics
// history keys and backup names.
func WithClock(clk clock.Clock) Option {
	return func(s *Store) { s.clock = clk }
}

// New returns a Store rooted at location. The directory is created
// lazily on first write.
func New(location string, opts ...Option) *Store {
	s := &Store{
		location: location,
		clock:    clock.New(),
		report:   make(map[string]any),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location returns the store's root directory.
func (s *Store) Location() string { return s.location }

func (s *Store) payloadPath(name, version string) string {
	return filepath.Join(s.location, fmt.Sprintf("%s_%s.bin", name, version))
}

func (s *Store) metadataPath(name, version string) string {
	return filepath.Join(s.location, fmt.Sprintf("%s_%s.json", name, version))
}

// Dump stores a trained artifact for the configured model, rotating
// any existing artifact of the same version into previous/ first.
// metrics become the metadata's current metrics and seed its metrics
// history. The accumulated train report is folded into the new
// metadata and cleared. columnsOrdered records whether training
// ordered its input columns.
func (s *Store) Dump(payload *Payload, cfg *config.Config, testMetrics map[string]any, columnsOrdered bool) (*Metadata, error) {
	if payload == nil {
		return nil, fmt.Errorf("refusing to store a nil payload")
	}
	name, version := cfg.Model.Name, cfg.Model.Version

	if err := os.MkdirAll(s.location, 0o750); err != nil {
		return nil, fmt.Errorf("creating model store at %s: %w", s.location, err)
	}
	if err := s.backupExisting(name, version); err != nil {
		return nil, err
	}

	meta := s.buildMetadata(payload, cfg, testMetrics, columnsOrdered)

	if err := writeFileAtomic(s.payloadPath(name, version), payload.Bytes, 0o600); err != nil {
		return nil, fmt.Errorf("writing payload: %w", err)
	}
	if err := s.writeMetadata(meta); err != nil {
		return nil, err
	}

	metrics.RecordArtifactDump(name, version, len(payload.Bytes))
	logging.Info().
		Str("model", name).
		Str("version", version).
		Int("bytes", len(payload.Bytes)).
		Str("format", payload.Format).
		Msg("Model artifact stored")
	return meta, nil
}

// Load returns the artifact and metadata for a model version. A
// missing payload or metadata file is ErrNotFound; metadata that
// exists but does not parse is ErrCorrupt. Other I/O faults pass
// through as neither kind.
func (s *Store) Load(name, version string) (*Payload, *Metadata, error) {
	bytes, err := os.ReadFile(s.payloadPath(name, version))
	if os.IsNotExist(err) {
		metrics.RecordArtifactLoad("not_found")
		return nil, nil, fmt.Errorf("model %s version %s: %w", name, version, ErrNotFound)
	}
	if err != nil {
		metrics.RecordArtifactLoad("error")
		return nil, nil, fmt.Errorf("model %s version %s: reading payload: %w", name, version, err)
	}

	meta, err := s.readMetadata(name, version)
	if err != nil {
		metrics.RecordArtifactLoad(loadStatus(err))
		return nil, nil, err
	}

	metrics.RecordArtifactLoad("success")
	logging.Debug().
		Str("model", name).
		Str("version", version).
		Int("bytes", len(bytes)).
		Msg("Model artifact loaded")
	return &Payload{Bytes: bytes, Format: meta.Format}, meta, nil
}

func loadStatus(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrCorrupt):
		return "corrupt"
	default:
		return "error"
	}
}

// UpdateMetrics replaces the current metrics of a stored model and
// appends them to its metrics history under the current timestamp.
func (s *Store) UpdateMetrics(name, version string, m map[string]any) (*Metadata, error) {
	meta, err := s.readMetadata(name, version)
	if err != nil {
		return nil, err
	}

	meta.Metrics = m
	if meta.MetricsHistory == nil {
		meta.MetricsHistory = make(map[string]map[string]any)
	}
	meta.MetricsHistory[s.clock.Now().Format(createdLayout)] = m

	if err := s.writeMetadata(meta); err != nil {
		return nil, err
	}
	logging.Info().
		Str("model", name).
		Str("version", version).
		Int("metrics", len(m)).
		Msg("Model metrics updated")
	return meta, nil
}

// AddToTrainReport records a value for the next Dump's train report.
// Tables are stored as their describe summary rather than their rows.
func (s *Store) AddToTrainReport(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.report[key] = reportValue(value)
}

func reportValue(value any) any {
	if t, ok := value.(*tabular.Table); ok {
		return t.Describe()
	}
	return value
}

// ModelInfo groups the stored versions of one model name, together
// with the rotated backups that still belong to it.
type ModelInfo struct {
	Name     string
	Latest   string
	Versions map[string]*Metadata
	Backups  []*Metadata
}

// ListModels scans the store and groups artifacts by model name.
// Identity comes from metadata contents, not filenames. The latest
// version is the lexically greatest one, so "1.10.0" orders below
// "1.9.0". Backups under previous/ are attached to their owning name;
// backups whose owner no longer exists in the live store are skipped.
// Unreadable metadata files are skipped with a warning.
func (s *Store) ListModels() (map[string]*ModelInfo, error) {
	entries, err := os.ReadDir(s.location)
	if os.IsNotExist(err) {
		return map[string]*ModelInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading model store at %s: %w", s.location, err)
	}

	models := make(map[string]*ModelInfo)
	for _, entry := range entries {
		meta, ok := readListedMetadata(s.location, entry)
		if !ok {
			continue
		}
		info, seen := models[meta.Name]
		if !seen {
			info = &ModelInfo{Name: meta.Name, Versions: make(map[string]*Metadata)}
			models[meta.Name] = info
		}
		info.Versions[meta.Version] = meta
		if meta.Version > info.Latest {
			info.Latest = meta.Version
		}
	}

	backupEntries, err := os.ReadDir(filepath.Join(s.location, backupDir))
	if os.IsNotExist(err) {
		return models, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading backup area: %w", err)
	}
	for _, entry := range backupEntries {
		meta, ok := readListedMetadata(filepath.Join(s.location, backupDir), entry)
		if !ok {
			continue
		}
		info, live := models[meta.Name]
		if !live {
			logging.Info().
				Str("model", meta.Name).
				Str("version", meta.Version).
				Msg("Skipping backup of a model no longer in the live store")
			continue
		}
		info.Backups = append(info.Backups, meta)
	}
	return models, nil
}

// readListedMetadata loads one directory entry as metadata for
// ListModels, reporting false for anything to skip.
func readListedMetadata(dir string, entry os.DirEntry) (*Metadata, bool) {
	if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
		return nil, false
	}
	path := filepath.Join(dir, entry.Name())
	data, err := os.ReadFile(path)
	if err != nil {
		logging.Warn().Err(err).Str("path", path).Msg("Skipping unreadable metadata file")
		return nil, false
	}
	meta := &Metadata{}
	if err := json.Unmarshal(data, meta); err != nil {
		logging.Warn().Err(err).Str("path", path).Msg("Skipping unparseable metadata file")
		return nil, false
	}
	if meta.Name == "" || meta.Version == "" {
		logging.Warn().Str("path", path).Msg("Skipping metadata without model identity")
		return nil, false
	}
	return meta, true
}

func (s *Store) buildMetadata(payload *Payload, cfg *config.Config, testMetrics map[string]any, columnsOrdered bool) *Metadata {
	if testMetrics == nil {
		testMetrics = map[string]any{}
	}
	created := s.clock.Now().Format(createdLayout)
	meta := &Metadata{
		Name:           cfg.Model.Name,
		Version:        cfg.Model.Version,
		Module:         cfg.Model.Module,
		Created:        created,
		CreatedBy:      currentUser(),
		Format:         payload.Format,
		APIName:        cfg.API.Name,
		APIVersion:     cfg.Model.Version,
		ColumnsOrdered: columnsOrdered,
		Metrics:        testMetrics,
		MetricsHistory: map[string]map[string]any{created: testMetrics},
		ConfigSnapshot: modelSnapshot(cfg),
		Environment:    CaptureEnvironment(),
	}

	s.mu.Lock()
	if len(s.report) > 0 {
		meta.TrainReport = s.report
		s.report = make(map[string]any)
	}
	s.mu.Unlock()
	return meta
}

// modelSnapshot copies the model section into the metadata. The
// module field stays out: it is recorded at the top level already.
func modelSnapshot(cfg *config.Config) map[string]any {
	snapshot := map[string]any{
		"name":                  cfg.Model.Name,
		"version":               cfg.Model.Version,
		"order_columns_warning": cfg.Model.OrderColumnsWarning,
	}
	if len(cfg.Model.Options) > 0 {
		snapshot["options"] = cfg.Model.Options
	}
	return snapshot
}

// backupExisting rotates the current artifact pair of a version into
// previous/ with a timestamp suffix. Files are copied, not moved, so
// a failed write afterwards still leaves the original in place.
func (s *Store) backupExisting(name, version string) error {
	metaPath := s.metadataPath(name, version)
	if !fileExists(metaPath) && !fileExists(s.payloadPath(name, version)) {
		return nil
	}

	dir := filepath.Join(s.location, backupDir)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating backup directory: %w", err)
	}
	stamp := s.clock.Now().Format(backupLayout)

	pairs := [][2]string{
		{metaPath, filepath.Join(dir, fmt.Sprintf("%s_%s_%s.json", name, version, stamp))},
		{s.payloadPath(name, version), filepath.Join(dir, fmt.Sprintf("%s_%s_%s.bin", name, version, stamp))},
	}
	for _, pair := range pairs {
		if err := copyFile(pair[0], pair[1]); err != nil {
			if os.IsNotExist(err) {
				// metadata can exist without its payload
				continue
			}
			return fmt.Errorf("backing up %s: %w", pair[0], err)
		}
	}

	metrics.RecordArtifactBackup()
	logging.Info().
		Str("model", name).
		Str("version", version).
		Str("stamp", stamp).
		Msg("Previous artifact rotated to backup")
	return nil
}

func (s *Store) readMetadata(name, version string) (*Metadata, error) {
	data, err := os.ReadFile(s.metadataPath(name, version))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("model %s version %s: %w", name, version, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("model %s version %s: reading metadata: %w", name, version, err)
	}

	meta := &Metadata{}
	if err := json.Unmarshal(data, meta); err != nil {
		return nil, fmt.Errorf("model %s version %s: metadata does not parse: %w (%v)",
			name, version, ErrCorrupt, err)
	}
	return meta, nil
}

func (s *Store) writeMetadata(meta *Metadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	if err := writeFileAtomic(s.metadataPath(meta.Name, meta.Version), data, 0o600); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}
	return nil
}

// writeFileAtomic writes via a temp file and rename so readers never
// observe a half-written artifact.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
