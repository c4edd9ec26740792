package graphexport

import (
	"fmt"
	"io"
	"os"

	"github.com/meshnum/pkg/writer"
)

// JSONWriter writes a sharer Graph as JSON.
type JSONWriter = writer.JSONWriter[*Graph]

// NewJSONWriter creates a compact JSON writer.
func NewJSONWriter() *JSONWriter {
	return writer.NewJSONWriter[*Graph]()
}

// NewPrettyJSONWriter creates a pretty-printing JSON writer.
func NewPrettyJSONWriter() *JSONWriter {
	return writer.NewPrettyJSONWriter[*Graph]()
}

// GzipWriter writes a sharer Graph as gzipped JSON.
type GzipWriter = writer.GzipWriter[*Graph]

// NewGzipWriter creates a gzip writer with default compression.
func NewGzipWriter() *GzipWriter {
	return writer.NewGzipWriter[*Graph]()
}

// DOTWriter writes a sharer Graph in Graphviz DOT format.
type DOTWriter struct{}

// NewDOTWriter creates a new DOT writer.
func NewDOTWriter() *DOTWriter {
	return &DOTWriter{}
}

// Write writes graph in DOT format to w.
func (d *DOTWriter) Write(graph *Graph, w io.Writer) error {
	if _, err := fmt.Fprintln(w, "digraph sharers {"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "  node [shape=ellipse];"); err != nil {
		return err
	}

	for _, node := range graph.Nodes {
		label := fmt.Sprintf("%s\\nowned=%d", node.Label, node.NumOwned)
		if _, err := fmt.Fprintf(w, "  \"%s\" [label=\"%s\"];\n", node.ID, label); err != nil {
			return err
		}
	}

	for _, edge := range graph.Edges {
		label := fmt.Sprintf("%d (%.1f%%)", edge.SharedMine, edge.Weight)
		if _, err := fmt.Fprintf(w, "  \"%s\" -> \"%s\" [label=\"%s\"];\n", edge.Source, edge.Target, label); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(w, "}")
	return err
}

// WriteToFile writes graph in DOT format to filepath.
func (d *DOTWriter) WriteToFile(graph *Graph, filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	return d.Write(graph, file)
}
