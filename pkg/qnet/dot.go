package qnet

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/entglab/swapnet/pkg/errors"
)

// ToDot writes the network in Graphviz DOT format, one edge per live
// directed link with the residual capacity as its label.
func (n *Network) ToDot(w io.Writer) error {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	for u := range n.out {
		fmt.Fprintf(&buf, "  %d;\n", u)
	}
	for _, e := range n.Weights() {
		fmt.Fprintf(&buf, "  %d -> %d [label=%q];\n", e.U, e.V, strconv.FormatFloat(e.W, 'g', -1, 64))
	}
	buf.WriteString("}\n")
	_, err := w.Write(buf.Bytes())
	return err
}

// DotString returns the DOT representation of the network.
func (n *Network) DotString() string {
	var buf bytes.Buffer
	_ = n.ToDot(&buf)
	return buf.String()
}

// WriteDotFile dumps the network to a DOT file.
func (n *Network) WriteDotFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "could not open file for writing: %s", path)
	}
	defer f.Close()
	if err := n.ToDot(f); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "writing %s", path)
	}
	return nil
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	return render(dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	return render(dot, graphviz.PNG)
}

func render(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
