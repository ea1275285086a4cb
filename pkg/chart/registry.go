package chart

import (
	"context"
	"slices"

	"github.com/matzehuels/vizlab/pkg/dataset"
	"github.com/matzehuels/vizlab/pkg/errors"
)

type (
	loadFunc  func(ctx context.Context, l *dataset.Loader, cfg Config) (Data, error)
	buildFunc func(cfg Config, d Data) (Chart, error)
)

type entry struct {
	load  loadFunc
	build buildFunc
}

var registry = map[Kind]entry{
	Bar:      {loadBar, newBar},
	HBar:     {loadPopulation, newHBar},
	Line:     {loadCoins, newLine},
	Timeline: {loadPopulation, newTimeline},
	Area:     {loadArea, newArea},
	Stacked:  {loadPopulation, newStacked},
	Pie:      {loadPie, newPie},
	Scatter:  {loadScatter, newScatter},
	Treemap:  {loadPopulation, newTreemap},
	Sunburst: {loadCountries, newSunburst},
	Pack:     {loadCountries, newPack},
	Tree:     {loadTree, newTree},
	NodeLink: {loadSubway, newNodeLink},
}

// Kinds returns the registered chart kinds in name order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, ok := registry[k]; !ok {
		return "", errors.New(errors.ErrCodeInvalidChart, "unknown chart kind %q", s)
	}
	return k, nil
}

// Load reads the data sources cfg names for its kind.
func Load(ctx context.Context, l *dataset.Loader, cfg Config) (Data, error) {
	e, ok := registry[cfg.Kind]
	if !ok {
		return Data{}, errors.New(errors.ErrCodeInvalidChart, "unknown chart kind %q", cfg.Kind)
	}
	if l == nil {
		l = dataset.DefaultLoader
	}
	return e.load(ctx, l, cfg)
}

// New builds a chart of kind from loaded data. The chart is empty until
// its first Update.
func New(kind Kind, cfg Config, d Data) (Chart, error) {
	e, ok := registry[kind]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidChart, "unknown chart kind %q", kind)
	}
	cfg.Kind = kind
	return e.build(cfg, d)
}

// Open loads, builds and renders cfg with its default state.
func Open(ctx context.Context, l *dataset.Loader, cfg Config) (Chart, error) {
	d, err := Load(ctx, l, cfg)
	if err != nil {
		return nil, err
	}
	c, err := New(cfg.Kind, cfg, d)
	if err != nil {
		return nil, err
	}
	if err := c.Update(c.Defaults()); err != nil {
		return nil, err
	}
	return c, nil
}

// source returns the path for role or an INVALID_INPUT error naming it.
func source(cfg Config, role string) (string, error) {
	src := cfg.Source(role)
	if src == "" {
		return "", errors.New(errors.ErrCodeInvalidInput, "%s chart %q: missing %q data source", cfg.Kind, cfg.Name, role)
	}
	return src, nil
}

// loadTable loads the "data" source of cfg.
func loadTable(ctx context.Context, l *dataset.Loader, cfg Config, s dataset.Schema) (dataset.Table, error) {
	src, err := source(cfg, "data")
	if err != nil {
		return dataset.Table{}, err
	}
	return l.Table(ctx, src, s)
}

// loadLookups loads every named lookup role. Optional roles that are not
// configured are skipped.
func loadLookups(ctx context.Context, l *dataset.Loader, cfg Config, required []string, optional ...string) (map[string]dataset.Lookup, error) {
	out := map[string]dataset.Lookup{}
	for _, role := range required {
		src, err := source(cfg, role)
		if err != nil {
			return nil, err
		}
		lk, err := l.Lookup(ctx, src)
		if err != nil {
			return nil, err
		}
		out[role] = lk
	}
	for _, role := range optional {
		src := cfg.Source(role)
		if src == "" {
			continue
		}
		lk, err := l.Lookup(ctx, src)
		if err != nil {
			return nil, err
		}
		out[role] = lk
	}
	return out, nil
}

// noData is returned by Update when the selected data is empty.
func noData(kind Kind, what string) error {
	return errors.New(errors.ErrCodeNotFound, "%s chart: no data for %s", kind, what)
}
