package services

import (
	"context"
	"encoding/gob"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/afero"

	"salesinsights/internal/loader"
	"salesinsights/internal/models"
)

const cacheVersion = "v1"

type cachedInsights struct {
	Insights     models.Insights
	LastModified time.Time
}

// Dashboard keeps precomputed insights in memory for the web handlers.
type Dashboard struct {
	mu       sync.RWMutex
	insights *models.Insights
	loadedAt time.Time
	source   string
	fs       afero.Fs
	cacheDir string
	loads    atomic.Int64
	logger   *slog.Logger
}

// NewDashboard returns an empty dashboard keeping its gob cache in cacheDir on
// fsys. An empty cacheDir disables the cache.
func NewDashboard(fsys afero.Fs, logger *slog.Logger, cacheDir string) *Dashboard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dashboard{
		insights: &models.Insights{},
		fs:       fsys,
		cacheDir: cacheDir,
		logger:   logger,
	}
}

func (d *Dashboard) SetInsights(insights *models.Insights) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.insights = insights
	d.loadedAt = time.Now()
	d.loads.Add(1)
}

// LoadFromDir loads the dataset through l and computes its insights, reusing
// the cached result while no input file changed since it was written.
func (d *Dashboard) LoadFromDir(ctx context.Context, l *loader.Loader, dir string) error {
	d.mu.Lock()
	d.source = dir
	d.mu.Unlock()

	modTime, err := l.LatestModTime()
	if err != nil {
		return err
	}

	if cached, err := d.loadFromCache(dir); err == nil && modTime.Before(cached.LastModified) {
		insights := cached.Insights
		d.SetInsights(&insights)
		d.logger.Info("loaded insights from cache", "dir", dir, "orders", insights.Orders.Records)
		return nil
	}

	start := time.Now()
	ds, err := l.Load(ctx)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	insights, err := Summarize(ds)
	if err != nil {
		return fmt.Errorf("summarize dataset: %w", err)
	}
	d.SetInsights(insights)

	if err := d.saveToCache(dir, insights); err != nil {
		d.logger.Warn("failed to save cache", "error", err)
	}

	d.logger.Info("insights computed",
		"dir", dir,
		"orders", insights.Orders.Records,
		"duration", time.Since(start))

	return nil
}

func (d *Dashboard) getCacheFilename(dir string) string {
	name := strings.NewReplacer("/", "_", `\`, "_", ":", "_").Replace(filepath.Clean(dir))
	return filepath.Join(d.cacheDir, fmt.Sprintf("%s_%s.gob", name, cacheVersion))
}

func (d *Dashboard) saveToCache(dir string, insights *models.Insights) error {
	if d.cacheDir == "" {
		return nil
	}
	if err := d.fs.MkdirAll(d.cacheDir, 0o755); err != nil {
		return err
	}

	file, err := d.fs.Create(d.getCacheFilename(dir))
	if err != nil {
		return err
	}
	defer file.Close()

	return gob.NewEncoder(file).Encode(cachedInsights{
		Insights:     *insights,
		LastModified: time.Now(),
	})
}

func (d *Dashboard) loadFromCache(dir string) (*cachedInsights, error) {
	if d.cacheDir == "" {
		return nil, os.ErrNotExist
	}

	file, err := d.fs.Open(d.getCacheFilename(dir))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var data cachedInsights
	if err := gob.NewDecoder(file).Decode(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Insights returns a copy of the current insights.
func (d *Dashboard) Insights() models.Insights {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return *d.insights
}

func (d *Dashboard) Breakdown(dim models.Dimension) ([]models.GroupTotal, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	groups, ok := d.insights.Breakdown(dim)
	if !ok {
		return nil, false
	}
	if groups == nil {
		groups = []models.GroupTotal{}
	}
	return groups, true
}

// Stats is used by the admin endpoint.
func (d *Dashboard) Stats() map[string]any {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return map[string]any{
		"source":     d.source,
		"loaded_at":  d.loadedAt,
		"loads":      d.loads.Load(),
		"orders":     d.insights.Orders.Records,
		"categories": len(d.insights.ByCategory),
		"regions":    len(d.insights.ByRegion),
		"segments":   len(d.insights.BySegment),
	}
}
