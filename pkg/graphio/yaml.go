package graphio

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/voxhive/callflow/pkg/flow"
)

// WriteYAML encodes a graph as a YAML definition and writes it to w.
// YAML export exists for human review and version control diffs; JSON is
// the interchange format.
func WriteYAML(g *flow.Graph, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(FromGraph(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}

// ReadYAML decodes a YAML definition from r into a graph. It returns the
// same validation errors as [ReadJSON].
func ReadYAML(r io.Reader) (*flow.Graph, error) {
	var d Definition
	if err := yaml.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return ToGraph(d)
}

// ExportYAML writes a graph to a YAML file at path.
func ExportYAML(g *flow.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteYAML(g, f)
}

// ImportYAML reads a YAML file at path and returns the decoded graph.
func ImportYAML(path string) (*flow.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadYAML(f)
}

// WriteDocumentYAML encodes a named workflow export envelope as YAML.
func WriteDocumentYAML(doc Document, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}

// ReadDocumentYAML decodes a workflow export envelope. Like
// [ReadDocumentJSON], a bare definition decodes as an unnamed document.
func ReadDocumentYAML(r io.Reader) (Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("read: %w", err)
	}

	var probe struct {
		Name       string      `yaml:"name"`
		Definition *Definition `yaml:"definition"`
	}
	if err := yaml.Unmarshal(raw, &probe); err != nil {
		return Document{}, fmt.Errorf("decode: %w", err)
	}
	if probe.Definition != nil {
		return Document{Name: probe.Name, Definition: *probe.Definition}, nil
	}

	var d Definition
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return Document{}, fmt.Errorf("decode: %w", err)
	}
	return Document{Name: probe.Name, Definition: d}, nil
}
