package scale

// Categorical colour schemes.
var (
	Tableau10 = []string{
		"#4e79a7", "#f28e2c", "#e15759", "#76b7b2", "#59a14f",
		"#edc949", "#af7aa1", "#ff9da7", "#9c755f", "#bab0ab",
	}
	Set1 = []string{
		"#e41a1c", "#377eb8", "#4daf4a", "#984ea3", "#ff7f00",
		"#ffff33", "#a65628", "#f781bf", "#999999",
	}
	Set3 = []string{
		"#8dd3c7", "#ffffb3", "#bebada", "#fb8072", "#80b1d3", "#fdb462",
		"#b3de69", "#fccde5", "#d9d9d9", "#bc80bd", "#ccebc5", "#ffed6f",
	}
	Spectral11 = []string{
		"#9e0142", "#d53e4f", "#f46d43", "#fdae61", "#fee08b", "#ffffbf",
		"#e6f598", "#abdda4", "#66c2a5", "#3288bd", "#5e4fa2",
	}
	Category10 = []string{
		"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
		"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
	}
)

// Scheme returns a copy of the named scheme, or Category10 for unknown names.
func Scheme(name string) []string {
	var s []string
	switch name {
	case "tableau10":
		s = Tableau10
	case "set1":
		s = Set1
	case "set3":
		s = Set3
	case "spectral":
		s = Spectral11
	default:
		s = Category10
	}
	return append([]string(nil), s...)
}

// NewColor returns an ordinal colour scale over the named scheme.
func NewColor(scheme string) *Ordinal[string] {
	return NewOrdinal(Scheme(scheme)...)
}
