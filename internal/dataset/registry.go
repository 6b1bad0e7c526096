package dataset

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/arc-research/housing-dashboard/internal/db"
	"github.com/arc-research/housing-dashboard/internal/model"
)

// Source drivers.
const (
	DriverGeoPackage = "gpkg"
	DriverGeoJSON    = "geojson"
	DriverPostGIS    = "postgis"
	DriverShapefile  = "shapefile"
)

// Source locates one dataset.
type Source struct {
	Name      string `yaml:"name" mapstructure:"name"`
	Driver    string `yaml:"driver" mapstructure:"driver"`
	Path      string `yaml:"path" mapstructure:"path"`
	Table     string `yaml:"table" mapstructure:"table"`
	NameField string `yaml:"name_field" mapstructure:"name_field"`
}

// Sources lists every input of the dashboard.
type Sources struct {
	Datasets   []Source `yaml:"datasets" mapstructure:"datasets"`
	Boundaries Source   `yaml:"boundaries" mapstructure:"boundaries"`
	History    string   `yaml:"history" mapstructure:"history"`
}

// Registry holds the loaded, validated snapshots. It is read-only once
// Load returns and safe for concurrent readers.
type Registry struct {
	datasets   map[string]*model.Dataset
	boundaries []model.Boundary
	history    []model.Series
	loadedAt   time.Time
}

// NewRegistry builds a registry from already-loaded data, validating it the
// same way Load does.
func NewRegistry(datasets []*model.Dataset, boundaries []model.Boundary, history []model.Series) (*Registry, error) {
	r := &Registry{
		datasets:   make(map[string]*model.Dataset, len(datasets)),
		boundaries: boundaries,
		history:    history,
		loadedAt:   time.Now().UTC(),
	}
	for _, ds := range datasets {
		if err := ds.Validate(); err != nil {
			return nil, err
		}
		ds.SortByRegion()
		r.datasets[ds.Name] = ds
	}

	joined := append([]*model.Dataset{}, datasets...)
	if len(history) > 0 {
		joined = append(joined, historyDataset(history))
	}
	if err := model.CheckCounties(joined...); err != nil {
		return nil, err
	}
	return r, nil
}

// Load reads every configured source concurrently and validates the result.
// pool may be nil when no source uses the postgis driver.
func Load(ctx context.Context, src Sources, pool db.Pool) (*Registry, error) {
	log := zap.L().With(zap.String("component", "dataset.registry"))
	start := time.Now()

	var (
		mu         sync.Mutex
		datasets   []*model.Dataset
		boundaries []model.Boundary
		history    []model.Series
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range src.Datasets {
		s := s
		g.Go(func() error {
			ds, err := loadDataset(gctx, s, pool)
			if err != nil {
				return err
			}
			mu.Lock()
			datasets = append(datasets, ds)
			mu.Unlock()
			log.Info("dataset loaded",
				zap.String("dataset", s.Name),
				zap.String("driver", s.Driver),
				zap.Int("records", len(ds.Records)),
			)
			return nil
		})
	}
	if src.Boundaries.Driver != "" {
		g.Go(func() error {
			b, err := loadBoundaries(gctx, src.Boundaries, pool)
			if err != nil {
				return err
			}
			boundaries = b
			return nil
		})
	}
	if src.History != "" {
		g.Go(func() error {
			h, err := LoadHistory(gctx, src.History)
			if err != nil {
				return err
			}
			history = h
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(datasets, func(i, j int) bool { return datasets[i].Name < datasets[j].Name })
	r, err := NewRegistry(datasets, boundaries, history)
	if err != nil {
		return nil, err
	}
	log.Info("registry ready",
		zap.Int("datasets", len(datasets)),
		zap.Int("boundaries", len(boundaries)),
		zap.Int("history_series", len(history)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return r, nil
}

func loadDataset(ctx context.Context, s Source, pool db.Pool) (*model.Dataset, error) {
	if s.Name == "" {
		return nil, eris.Wrap(model.ErrConfiguration, "dataset: source without name")
	}
	switch strings.ToLower(s.Driver) {
	case DriverGeoPackage, "":
		return LoadGeoPackage(ctx, s.Path, s.Name)
	case DriverGeoJSON:
		return LoadGeoJSON(s.Path, s.Name)
	case DriverPostGIS:
		if pool == nil {
			return nil, eris.Wrapf(model.ErrConfiguration, "dataset: %s uses postgis but no database is configured", s.Name)
		}
		return LoadPostGIS(ctx, pool, s.Table, s.Name)
	default:
		return nil, eris.Wrapf(model.ErrConfiguration, "dataset: unknown driver %q for %s", s.Driver, s.Name)
	}
}

func loadBoundaries(ctx context.Context, s Source, pool db.Pool) ([]model.Boundary, error) {
	switch strings.ToLower(s.Driver) {
	case DriverShapefile:
		return LoadBoundaryShapefile(s.Path, s.NameField)
	case DriverGeoJSON:
		return LoadBoundaryGeoJSON(s.Path, s.NameField)
	case DriverPostGIS:
		if pool == nil {
			return nil, eris.Wrap(model.ErrConfiguration, "dataset: boundaries use postgis but no database is configured")
		}
		return LoadBoundaryPostGIS(ctx, pool)
	default:
		return nil, eris.Wrapf(model.ErrConfiguration, "dataset: unknown boundary driver %q", s.Driver)
	}
}

func historyDataset(history []model.Series) *model.Dataset {
	ds := &model.Dataset{Name: "history", Records: make([]model.RegionRecord, 0, len(history))}
	for _, s := range history {
		if s.CountyName == "" {
			continue
		}
		ds.Records = append(ds.Records, model.RegionRecord{RegionID: s.RegionID, CountyName: s.CountyName})
	}
	return ds
}

// Dataset returns the named snapshot.
func (r *Registry) Dataset(name string) (*model.Dataset, error) {
	ds, ok := r.datasets[name]
	if !ok {
		return nil, eris.Wrapf(model.ErrConfiguration, "dataset: %q is not loaded", name)
	}
	return ds, nil
}

// Names lists the loaded dataset names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.datasets))
	for n := range r.datasets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Boundaries returns the county outlines.
func (r *Registry) Boundaries() []model.Boundary { return r.boundaries }

// History returns the monthly series of every region.
func (r *Registry) History() []model.Series { return r.history }

// LoadedAt is when the snapshot was validated.
func (r *Registry) LoadedAt() time.Time { return r.loadedAt }
