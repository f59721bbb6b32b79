package tree

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/piemenu/pkg/layout"
	"github.com/matzehuels/piemenu/pkg/node"
)

func sampleTree() []node.Node {
	hidden := node.Action("docs", "secret", ".secret", "", "docs.open")
	hidden.Hidden = true
	return []node.Node{
		node.Category("docs", "docs", "Docs", "",
			node.Action("docs", "readme", "Readme", "", "docs.open"),
			hidden,
		),
		node.Folder("files", "/home", "home", "files.open"),
	}
}

func TestProviderDOT(t *testing.T) {
	dot := ProviderDOT(sampleTree(), Options{})
	for _, want := range []string{
		`"n0" [label="Docs", fillcolor=lightyellow];`,
		`"n0.1" [label=".secret", style="rounded,filled", fillcolor=lightgrey, fontcolor=grey40];`,
		`"n1" [label="home", style="rounded,filled,dashed"];`,
		`"n0" -> "n0.0";`,
		`"n0" -> "n0.1";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %s\n%s", want, dot)
		}
	}
	if strings.Contains(dot, `-> "n1"`) {
		t.Error("roots must not have incoming edges")
	}
}

func TestProviderDOTDetailed(t *testing.T) {
	dot := ProviderDOT(sampleTree()[1:], Options{Detailed: true})
	if !strings.Contains(dot, `home\nfolder\nprovider: files\npath: /home`) {
		t.Errorf("detailed label missing:\n%s", dot)
	}
}

func TestStackDOT(t *testing.T) {
	eng, err := layout.NewEngine(layout.Config{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	roots := sampleTree()
	rings := []layout.RingInput{
		{Nodes: roots, Selected: 0},
		{Nodes: roots[0].Children, Selected: -1},
	}
	dot := StackDOT(eng.Compute(rings), Options{Angles: true})
	for _, want := range []string{
		"subgraph cluster_0 {",
		"subgraph cluster_1 {",
		`label="ring 0 (full`,
		`"r0_0" -> "r1_0" [lhead=cluster_1];`,
		"penwidth=3",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %s\n%s", want, dot)
		}
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ProviderDOT(sampleTree(), Options{}))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(strings.TrimSpace(string(svg)), "<") || !strings.Contains(string(svg), `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 `) {
		t.Errorf("unexpected SVG:\n%.200s", svg)
	}
}
