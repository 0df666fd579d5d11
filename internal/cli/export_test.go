package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/voxhive/callflow/pkg/graphio"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"svg"}},
		{"json", []string{"json"}},
		{"json,dot", []string{"json", "dot"}},
	}

	for _, tt := range tests {
		got := parseFormats(tt.in)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRunExportYAMLAndDOT(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)
	input := writeDefinition(t, "flow.json", testDefinitionJSON)
	base := strings.TrimSuffix(input, ".json")

	err := c.runExport(context.Background(), input, []string{"yaml", "dot"}, "", "TB", false)
	if err != nil {
		t.Fatalf("runExport() error: %v", err)
	}

	if _, err := graphio.ImportYAML(base + ".yaml"); err != nil {
		t.Errorf("yaml output should re-import: %v", err)
	}

	dot, err := os.ReadFile(base + ".dot")
	if err != nil {
		t.Fatalf("read dot output: %v", err)
	}
	if !strings.Contains(string(dot), "digraph") {
		t.Error("dot output should contain a digraph declaration")
	}
	if !strings.Contains(string(dot), "start-1") {
		t.Error("dot output should name the nodes")
	}
}

func TestRunExportJSONWithOutputBase(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)
	input := writeDefinition(t, "flow.json", testDefinitionJSON)
	outBase := filepath.Join(t.TempDir(), "exported")

	err := c.runExport(context.Background(), input, []string{"json"}, outBase, "TB", false)
	if err != nil {
		t.Fatalf("runExport() error: %v", err)
	}

	g, err := graphio.ImportJSON(outBase + ".json")
	if err != nil {
		t.Fatalf("json output should re-import: %v", err)
	}
	if g.NodeCount() != 3 {
		t.Errorf("exported graph has %d nodes, want 3", g.NodeCount())
	}
}

func TestRunExportOverwriteGuard(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)
	input := writeDefinition(t, "flow.json", testDefinitionJSON)

	// json export next to flow.json would land on flow.json itself.
	err := c.runExport(context.Background(), input, []string{"json"}, "", "TB", false)
	if err == nil {
		t.Fatal("runExport() should refuse to overwrite its input")
	}
	if !strings.Contains(err.Error(), "overwrite") {
		t.Errorf("error = %q, should mention the overwrite", err)
	}
}

func TestRunExportUnknownFormat(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)
	input := writeDefinition(t, "flow.json", testDefinitionJSON)

	err := c.runExport(context.Background(), input, []string{"png"}, "", "TB", false)
	if err == nil {
		t.Fatal("runExport() should reject unknown formats")
	}
}
