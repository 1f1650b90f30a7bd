// Package cache persists fully parsed weather series next to their source files'
// identity so a later run can skip parsing.
//
// A cache file is valid only while it is strictly newer than its source file.
// Validity is judged on modification time alone: a source rewritten with identical
// content invalidates the cache, while an edit that preserves the source mtime does
// not. Cache files are named from the provider type and the source base name, so
// two sources with the same base name in different directories share a cache file.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/couchcryptid/weather-ingest/internal/domain"
	"github.com/couchcryptid/weather-ingest/internal/observability"
	"github.com/couchcryptid/weather-ingest/internal/refet"
)

// Suffix is appended to every cache file name.
const Suffix = ".cache"

// snapshotVersion changes whenever the snapshot layout changes; older files are misses.
const snapshotVersion = 2

// errModelMismatch marks a snapshot whose ET columns were computed with another model.
var errModelMismatch = errors.New("reference ET model mismatch")

// Entry is the cached state of one parsed source file. CreatedAt is filled on load.
// ETModel names the model that produced the series' reference ET values.
type Entry struct {
	Meta      domain.StationMeta
	Series    *domain.Series
	ETModel   refet.Model
	CreatedAt time.Time
}

// snapshot is the on-disk document, zstd-compressed JSON.
type snapshot struct {
	Version   int                  `json:"version"`
	Provider  string               `json:"provider"`
	ETModel   refet.Model          `json:"et_model"`
	Source    string               `json:"source"`
	CreatedAt time.Time            `json:"created_at"`
	Meta      domain.StationMeta   `json:"meta"`
	Records   []domain.DailyRecord `json:"records"`
}

// Manager reads and writes cache files in one directory.
type Manager struct {
	dir     string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewManager creates a Manager rooted at dir. The directory is created on first store.
func NewManager(dir string, logger *slog.Logger, metrics *observability.Metrics) *Manager {
	return &Manager{dir: dir, logger: logger, metrics: metrics}
}

// Dir returns the cache directory.
func (m *Manager) Dir() string { return m.dir }

// Path returns the cache file for a source read by the given provider type.
func (m *Manager) Path(providerType, sourcePath string) string {
	return Path(m.dir, providerType, sourcePath)
}

// Path builds "<dir>/<providerType>_<source base name without extension>.cache".
func Path(dir, providerType, sourcePath string) string {
	base := filepath.Base(sourcePath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, fmt.Sprintf("%s_%s%s", providerType, name, Suffix))
}

// TryLoad returns the cached entry for sourcePath when a cache file exists, is
// strictly newer than the source and was computed with the given ET model.
// Missing, stale, unreadable, or corrupt cache files are all reported as a miss.
func (m *Manager) TryLoad(providerType, sourcePath string, model refet.Model) (Entry, bool) {
	cachePath := m.Path(providerType, sourcePath)

	cacheInfo, err := os.Stat(cachePath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			m.logger.Warn("cache stat failed", "cache_path", cachePath, "error", err)
		}
		m.countLookup("miss")
		return Entry{}, false
	}
	sourceInfo, err := os.Stat(sourcePath)
	if err != nil {
		m.logger.Warn("source stat failed", "path", sourcePath, "error", err)
		m.countLookup("miss")
		return Entry{}, false
	}
	if !cacheInfo.ModTime().After(sourceInfo.ModTime()) {
		m.logger.Debug("cache stale",
			"cache_path", cachePath,
			"cache_mtime", cacheInfo.ModTime(),
			"source_mtime", sourceInfo.ModTime(),
		)
		m.countLookup("stale")
		return Entry{}, false
	}

	entry, err := m.read(cachePath, providerType, model)
	if errors.Is(err, errModelMismatch) {
		m.logger.Info("cache computed with another ET model, reparsing source", "cache_path", cachePath, "error", err)
		m.countLookup("model_mismatch")
		return Entry{}, false
	}
	if err != nil {
		m.logger.Warn("cache unreadable, reparsing source", "cache_path", cachePath, "error", err)
		m.countLookup("corrupt")
		return Entry{}, false
	}

	m.countLookup("hit")
	return entry, true
}

func (m *Manager) read(cachePath, providerType string, model refet.Model) (Entry, error) {
	f, err := os.Open(cachePath)
	if err != nil {
		return Entry{}, err
	}
	defer func() { _ = f.Close() }()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return Entry{}, fmt.Errorf("open zstd stream: %w", err)
	}
	defer dec.Close()

	var snap snapshot
	if err := json.NewDecoder(dec).Decode(&snap); err != nil {
		return Entry{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return Entry{}, fmt.Errorf("snapshot version %d, want %d", snap.Version, snapshotVersion)
	}
	if snap.Provider != providerType {
		return Entry{}, fmt.Errorf("snapshot written by %q, want %q", snap.Provider, providerType)
	}
	if snap.ETModel != model {
		return Entry{}, fmt.Errorf("%w: snapshot has %q, want %q", errModelMismatch, snap.ETModel, model)
	}
	if len(snap.Records) == 0 {
		return Entry{}, fmt.Errorf("snapshot has no records: %w", domain.ErrNoData)
	}

	series, err := domain.SeriesFromRecords(snap.Records)
	if err != nil {
		return Entry{}, fmt.Errorf("rebuild series: %w", err)
	}
	return Entry{Meta: snap.Meta, Series: series, ETModel: snap.ETModel, CreatedAt: snap.CreatedAt}, nil
}

// Store writes entry for sourcePath. Failures are logged and counted, never returned.
func (m *Manager) Store(providerType, sourcePath string, entry Entry) {
	cachePath := m.Path(providerType, sourcePath)
	if err := m.write(cachePath, providerType, sourcePath, entry); err != nil {
		m.logger.Warn("failed to write cache file", "cache_path", cachePath, "error", err)
		m.countWrite("error")
		return
	}
	m.logger.Debug("cache written", "cache_path", cachePath, "days", entry.Series.Len())
	m.countWrite("success")
}

// write encodes the snapshot into a temporary file in the cache directory and
// renames it into place, so readers see either the old file or the new one.
func (m *Manager) write(cachePath, providerType, sourcePath string, entry Entry) (err error) {
	if entry.Series == nil {
		return errors.New("nil series")
	}
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(m.dir, filepath.Base(cachePath)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	enc, err := zstd.NewWriter(tmp)
	if err != nil {
		return fmt.Errorf("open zstd stream: %w", err)
	}
	snap := snapshot{
		Version:   snapshotVersion,
		Provider:  providerType,
		ETModel:   entry.ETModel,
		Source:    sourcePath,
		CreatedAt: domain.Now().UTC(),
		Meta:      entry.Meta,
		Records:   entry.Series.Records(),
	}
	if err := json.NewEncoder(enc).Encode(snap); err != nil {
		_ = enc.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("flush zstd stream: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), cachePath); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

// Remove deletes the cache file for sourcePath if present.
func (m *Manager) Remove(providerType, sourcePath string) error {
	err := os.Remove(m.Path(providerType, sourcePath))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (m *Manager) countLookup(result string) {
	if m.metrics != nil {
		m.metrics.CacheLookups.WithLabelValues(result).Inc()
	}
}

func (m *Manager) countWrite(outcome string) {
	if m.metrics != nil {
		m.metrics.CacheWrites.WithLabelValues(outcome).Inc()
	}
}
