package chart

import (
	"context"
	"math"
	"strconv"

	"github.com/matzehuels/vizlab/pkg/dataset"
	"github.com/matzehuels/vizlab/pkg/format"
	"github.com/matzehuels/vizlab/pkg/hierarchy"
)

// Node types of the country hierarchies.
const (
	typeEarth     = "Earth"
	typeContinent = "Continent"
	typeRegion    = "Region"
	typeCountry   = "Country"
)

// countryMeasures are the values the "option" control sizes nodes by.
var countryMeasures = []string{"population", "land_area", "density"}

// loadCountries reads the 2020 country table and its code lookups. The
// sunburst groups by region too and needs region names.
func loadCountries(ctx context.Context, l *dataset.Loader, cfg Config) (Data, error) {
	required := []string{"country", "continent_code"}
	lookups := []string{"continents"}
	if cfg.Kind == Sunburst {
		required = append(required, "region_code")
		lookups = append(lookups, "regions")
	}
	t, err := loadTable(ctx, l, cfg, dataset.Schema{
		Required: required,
		Numbers:  countryMeasures,
		Percent:  []string{"urban_population"},
	})
	if err != nil {
		return Data{}, err
	}
	lk, err := loadLookups(ctx, l, cfg, lookups)
	if err != nil {
		return Data{}, err
	}
	return Data{Table: t, Lookups: lk}, nil
}

// countryTree groups t into Earth, continents, optionally regions, and
// countries, sized and sorted by measure.
func countryTree(t dataset.Table, regions bool, measure string) *hierarchy.Node {
	levels := []hierarchy.Level{
		{Name: typeEarth, Type: typeEarth},
		{Field: "continent_code", Type: typeContinent},
	}
	if regions {
		levels = append(levels, hierarchy.Level{Field: "region_code", Type: typeRegion})
	}
	levels = append(levels, hierarchy.Level{Field: "country", Type: typeCountry})
	return hierarchy.Build(t, levels...).SumField(measure).Sort(hierarchy.ByValueDesc)
}

// continentsOf maps every node ID to the continent code above it.
func continentsOf(root *hierarchy.Node) map[string]string {
	out := map[string]string{}
	root.Walk(func(n *hierarchy.Node, anc []*hierarchy.Node) bool {
		switch {
		case n.Type == typeContinent:
			out[n.ID] = n.Name
		case len(anc) > 1:
			out[n.ID] = out[anc[1].ID]
		}
		return true
	})
	return out
}

// countryLines describes a node of a country hierarchy for the hover box.
func countryLines(n *hierarchy.Node, continents, regions dataset.Lookup) []string {
	var pop float64
	var countries, regionCount int
	for _, leaf := range n.Leaves() {
		pop += zeroNaN(leaf.Data.Num("population"))
		countries++
	}
	for _, d := range n.Descendants() {
		if d.Type == typeRegion {
			regionCount++
		}
	}
	population := "Population: " + format.Thousands(pop, 0)
	switch n.Type {
	case typeEarth:
		lines := []string{"Planet: Earth", "Number of continents: " + strconv.Itoa(len(n.Children))}
		if regionCount > 0 {
			lines = append(lines, "Number of regions: "+strconv.Itoa(regionCount))
		}
		return append(lines, "Number of countries: "+strconv.Itoa(countries), population)
	case typeContinent:
		lines := []string{"Continent: " + continents.Get(n.Name)}
		if regionCount > 0 {
			lines = append(lines, "Number of regions: "+strconv.Itoa(regionCount))
		}
		return append(lines, "Number of countries: "+strconv.Itoa(countries), population)
	case typeRegion:
		return []string{"Region: " + regions.Get(n.Name), "Number of countries: " + strconv.Itoa(countries), population}
	}
	d := n.Data
	return []string{
		"Country: " + n.Name,
		population,
		"Urban Population: " + format.Thousands(zeroNaN(d.Num("urban_population")), 0) + "%",
		"Land area: " + format.Thousands(zeroNaN(d.Num("land_area")), 0) + " km2",
		"Number of people / km2: " + format.Thousands(zeroNaN(d.Num("density")), 0),
	}
}

// hierarchyGraph is the parent-child graph of root, coloured by colour.
func hierarchyGraph(root *hierarchy.Node, colour func(*hierarchy.Node) string) Graph {
	g := Graph{Directed: true}
	for _, n := range root.Descendants() {
		g.Nodes = append(g.Nodes, GraphNode{ID: n.ID, Label: n.Name, Colour: colour(n), X: n.X, Y: n.Y})
	}
	for _, l := range root.Links() {
		g.Edges = append(g.Edges, GraphEdge{From: l.Source.ID, To: l.Target.ID, Colour: colour(l.Source)})
	}
	return g
}

// leafSeries lists the leaves of root with their values.
func leafSeries(name string, root *hierarchy.Node) []Series {
	if root == nil {
		return nil
	}
	s := Series{Name: name}
	for i, n := range root.Leaves() {
		s.X = append(s.X, float64(i))
		s.Y = append(s.Y, n.Value)
		s.Labels = append(s.Labels, n.Name)
	}
	return []Series{s}
}

func zeroNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
