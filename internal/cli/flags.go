package cli

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/codegraph/internal/config"
	"github.com/matzehuels/codegraph/pkg/controller"
	"github.com/matzehuels/codegraph/pkg/pipeline"
)

// graphFlags are the filter and view flags shared by the graph commands.
// Unset flags fall back to the loaded configuration.
type graphFlags struct {
	project       string
	view          string
	threshold     float64
	limit         int
	languages     []string
	cluster       bool
	minSize       int
	layout        string
	inferLanguage bool

	file    string // read the graph from a local JSON file
	refresh bool   // bypass cached backend responses
	noCache bool
}

func (f *graphFlags) register(cmd *cobra.Command) {
	f.registerFilters(cmd)
	f.registerView(cmd)
}

// registerFilters adds the flags that select which graph is fetched.
func (f *graphFlags) registerFilters(cmd *cobra.Command) {
	defaults := config.DefaultConfig().Graph

	fl := cmd.Flags()
	fl.StringVarP(&f.project, "project", "p", "", "project id")
	fl.StringVar(&f.view, "view", defaults.View, "graph view: functions, components")
	fl.Float64Var(&f.threshold, "threshold", defaults.Threshold, "similarity threshold in [0, 1]")
	fl.IntVar(&f.limit, "limit", defaults.Limit, "maximum number of nodes")
	fl.StringSliceVarP(&f.languages, "language", "L", nil, "only include these languages (repeatable)")
	fl.BoolVar(&f.inferLanguage, "infer-language", defaults.InferLanguage, "infer missing languages from file extensions")
	fl.StringVarP(&f.file, "file", "f", "", "read the graph from a local JSON file instead of the backend")
	fl.BoolVar(&f.refresh, "refresh", false, "bypass cached backend responses")
	fl.BoolVar(&f.noCache, "no-cache", false, "disable caching")
}

// registerView adds the clustering and layout flags.
func (f *graphFlags) registerView(cmd *cobra.Command) {
	defaults := config.DefaultConfig().Graph

	fl := cmd.Flags()
	fl.BoolVar(&f.cluster, "cluster", defaults.Cluster, "collapse large language groups into cluster nodes")
	fl.IntVar(&f.minSize, "min-size", defaults.MinSize, "a language group clusters when larger than this")
	fl.StringVarP(&f.layout, "layout", "l", defaults.Layout, "layout: force, circular, hierarchical, grid")
}

// resolve fills every flag the user did not set from cfg.
func (f *graphFlags) resolve(cmd *cobra.Command, cfg config.GraphConfig) {
	fl := cmd.Flags()
	if !fl.Changed("project") {
		f.project = cfg.Project
	}
	if !fl.Changed("view") {
		f.view = cfg.View
	}
	if !fl.Changed("threshold") {
		f.threshold = cfg.Threshold
	}
	if !fl.Changed("limit") {
		f.limit = cfg.Limit
	}
	if !fl.Changed("language") {
		f.languages = slices.Clone(cfg.Languages)
	}
	if !fl.Changed("cluster") {
		f.cluster = cfg.Cluster
	}
	if !fl.Changed("min-size") {
		f.minSize = cfg.MinSize
	}
	if !fl.Changed("layout") {
		f.layout = cfg.Layout
	}
	if !fl.Changed("infer-language") {
		f.inferLanguage = cfg.InferLanguage
	}
	for i, l := range f.languages {
		f.languages[i] = strings.ToLower(strings.TrimSpace(l))
	}
	if f.project == "" && f.file != "" {
		f.project = projectFromFile(f.file)
	}
}

// options builds pipeline options from the resolved flags.
func (f *graphFlags) options() pipeline.Options {
	return pipeline.Options{
		Project:       f.project,
		View:          f.view,
		Threshold:     f.threshold,
		Limit:         f.limit,
		Languages:     f.languages,
		Refresh:       f.refresh,
		InferLanguage: f.inferLanguage,
		Cluster:       f.cluster,
		MinSize:       f.minSize,
		Layout:        f.layout,
	}
}

// filters builds controller filters from the resolved flags.
func (f *graphFlags) filters() controller.Filters {
	return controller.Filters{
		Project:   f.project,
		View:      f.view,
		Threshold: f.threshold,
		Limit:     f.limit,
		Languages: f.languages,
		Cluster:   f.cluster,
		MinSize:   f.minSize,
	}
}

// projectFromFile names a file-backed graph after the file: "out/demo.json"
// becomes "demo".
func projectFromFile(path string) string {
	base := filepath.Base(path)
	if i := strings.Index(base, "."); i > 0 {
		base = base[:i]
	}
	return base
}
