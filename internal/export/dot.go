package export

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/specialistvlad/buildgrid/internal/model"
)

// WriteDOT renders the workspace graph in Graphviz DOT. Edges point from a
// target to each of its dependencies; test targets are drawn as boxes.
func WriteDOT(w io.Writer, ws *model.Workspace) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("digraph buildgrid {\n")
	bw.WriteString("  rankdir=BT;\n")
	bw.WriteString("  node [shape=ellipse];\n")

	targets := ws.Targets()
	for _, t := range targets {
		shape := ""
		if t.Test {
			shape = ", shape=box"
		}
		fmt.Fprintf(bw, "  %s [label=%s%s];\n",
			strconv.Quote(t.Label().String()),
			strconv.Quote(t.Name+"\n"+t.Kind),
			shape,
		)
	}
	for _, t := range targets {
		for _, d := range t.Deps {
			fmt.Fprintf(bw, "  %s -> %s;\n", strconv.Quote(t.Label().String()), strconv.Quote(d.Label.String()))
		}
	}
	bw.WriteString("}\n")
	return bw.Flush()
}
