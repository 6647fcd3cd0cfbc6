package cli

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/matzehuels/codegraph/internal/config"
	cgerrors "github.com/matzehuels/codegraph/pkg/errors"
	"github.com/matzehuels/codegraph/pkg/pipeline"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{"empty defaults to svg", nil, []string{"svg"}},
		{"single format", []string{"svg"}, []string{"svg"}},
		{"comma separated", []string{"json,dot,svg"}, []string{"json", "dot", "svg"}},
		{"repeated flag", []string{"dot", "svg"}, []string{"dot", "svg"}},
		{"case and spaces", []string{" SVG ", "Dot"}, []string{"svg", "dot"}},
		{"duplicates dropped", []string{"svg,svg", "svg"}, []string{"svg"}},
		{"blank parts skipped", []string{"json,,"}, []string{"json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseFormats(tt.input); !slices.Equal(got, tt.want) {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateFormats(t *testing.T) {
	tests := []struct {
		name    string
		formats []string
		wantErr bool
	}{
		{"valid svg", []string{"svg"}, false},
		{"valid all", []string{"json", "dot", "svg"}, false},
		{"invalid format", []string{"pdf"}, true},
		{"mixed valid invalid", []string{"svg", "png"}, true},
		{"empty slice", []string{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := pipeline.ValidateFormats(tt.formats)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFormats(%v) error = %v, wantErr %v", tt.formats, err, tt.wantErr)
			}
		})
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	artifacts := map[string][]byte{
		"json": []byte(`{}`),
		"dot":  []byte("digraph {}"),
		"svg":  []byte("<svg/>"),
	}

	t.Run("single format uses output verbatim", func(t *testing.T) {
		out := filepath.Join(dir, "picture.svg")
		paths, err := writeArtifacts(artifacts, []string{"svg"}, out, "demo")
		if err != nil {
			t.Fatalf("writeArtifacts() error: %v", err)
		}
		if len(paths) != 1 || paths[0] != out {
			t.Errorf("paths = %v, want [%s]", paths, out)
		}
	})

	t.Run("several formats append extensions", func(t *testing.T) {
		base := filepath.Join(dir, "nested", "graph")
		paths, err := writeArtifacts(artifacts, []string{"json", "dot"}, base, "demo")
		if err != nil {
			t.Fatalf("writeArtifacts() error: %v", err)
		}
		want := []string{base + ".json", base + ".dot"}
		if !slices.Equal(paths, want) {
			t.Errorf("paths = %v, want %v", paths, want)
		}
		data, err := os.ReadFile(base + ".dot")
		if err != nil || string(data) != "digraph {}" {
			t.Errorf("dot file = %q, %v", data, err)
		}
	})

	t.Run("missing artifact", func(t *testing.T) {
		if _, err := writeArtifacts(map[string][]byte{}, []string{"svg"}, filepath.Join(dir, "x"), "demo"); err == nil {
			t.Error("expected error for missing artifact")
		}
	})
}

func TestProjectFromFile(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"demo.json", "demo"},
		{"out/demo.layout.json", "demo"},
		{"/abs/path/snapshot", "snapshot"},
		{".hidden.json", ".hidden.json"},
	}
	for _, tt := range tests {
		if got := projectFromFile(tt.path); got != tt.want {
			t.Errorf("projectFromFile(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestGraphFlagsResolve(t *testing.T) {
	cfg := config.DefaultConfig().Graph
	cfg.Project = "from-config"
	cfg.MinSize = 9
	cfg.Languages = []string{"go"}
	cfg.Layout = "grid"

	newCmd := func(f *graphFlags) *cobra.Command {
		cmd := &cobra.Command{Use: "test"}
		f.register(cmd)
		return cmd
	}

	t.Run("unset flags come from config", func(t *testing.T) {
		var f graphFlags
		cmd := newCmd(&f)
		if err := cmd.ParseFlags(nil); err != nil {
			t.Fatal(err)
		}
		f.resolve(cmd, cfg)
		if f.project != "from-config" || f.minSize != 9 || f.layout != "grid" {
			t.Errorf("resolved = %+v", f)
		}
		if !slices.Equal(f.languages, []string{"go"}) {
			t.Errorf("languages = %v", f.languages)
		}
	})

	t.Run("set flags win", func(t *testing.T) {
		var f graphFlags
		cmd := newCmd(&f)
		if err := cmd.ParseFlags([]string{"-p", "cli", "--min-size", "2", "-L", "Python", "--layout", "circular"}); err != nil {
			t.Fatal(err)
		}
		f.resolve(cmd, cfg)
		if f.project != "cli" || f.minSize != 2 || f.layout != "circular" {
			t.Errorf("resolved = %+v", f)
		}
		if !slices.Equal(f.languages, []string{"python"}) {
			t.Errorf("languages = %v, want [python]", f.languages)
		}
	})

	t.Run("file names the project", func(t *testing.T) {
		var f graphFlags
		cmd := newCmd(&f)
		if err := cmd.ParseFlags([]string{"--file", "data/demo.json"}); err != nil {
			t.Fatal(err)
		}
		noProject := cfg
		noProject.Project = ""
		f.resolve(cmd, noProject)
		if f.project != "demo" {
			t.Errorf("project = %q, want demo", f.project)
		}
		if got := f.filters(); got.Project != "demo" || got.MinSize != 9 {
			t.Errorf("filters() = %+v", got)
		}
		if got := f.options(); got.Project != "demo" || got.Layout != "grid" {
			t.Errorf("options() = %+v", got)
		}
	})
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 << 20, "5.0 MiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestFormatError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains []string
	}{
		{"plain", errors.New("boom"), []string{"boom"}},
		{"coded", cgerrors.New(cgerrors.ErrCodeInvalidLayout, "unknown layout %q", "spiral"), []string{`unknown layout "spiral"`, "circular"}},
		{"coded with cause", cgerrors.Wrap(cgerrors.ErrCodeNetwork, errors.New("connection refused"), "fetch demo"), []string{"fetch demo: connection refused", "backend.url"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatError(tt.err)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("FormatError() = %q, want it to contain %q", got, want)
				}
			}
		})
	}
}
