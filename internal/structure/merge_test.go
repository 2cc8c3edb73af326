package structure

import (
	"strings"
	"testing"

	"docstruct/internal/node"
)

func textProv(tempID, parent, position, depth int, content, tag string) node.Provisional {
	return node.Provisional{
		TempID:     tempID,
		ParentTemp: parent,
		Kind:       node.KindText,
		Content:    content,
		Metadata:   map[string]any{node.MetaTag: tag},
		Position:   position,
		Depth:      depth,
	}
}

func headerProv(tempID, parent, position, depth, level int, content string) node.Provisional {
	return node.Provisional{
		TempID:     tempID,
		ParentTemp: parent,
		Kind:       node.KindHeader,
		Content:    content,
		Metadata:   map[string]any{node.MetaLevel: level},
		Position:   position,
		Depth:      depth,
	}
}

func TestMergeText_ConsecutiveRunCollapses(t *testing.T) {
	in := []node.Provisional{
		headerProv(0, node.NoParent, 0, 0, 1, "Intro"),
		textProv(1, 0, 1, 1, "<p>one</p>", "p"),
		textProv(2, 0, 2, 1, "<p>two</p>", "p"),
		textProv(3, 0, 3, 1, "<div>three</div>", "div"),
	}
	out := MergeText(in)

	if len(out) != 2 {
		t.Fatalf("expected 2 nodes after merge, got %d", len(out))
	}
	merged := out[1]
	if merged.Kind != node.KindText {
		t.Fatalf("expected text node, got %s", merged.Kind)
	}
	if merged.Metadata[node.MetaMerged] != true {
		t.Errorf("expected merged flag, got %v", merged.Metadata[node.MetaMerged])
	}
	if merged.Metadata[node.MetaCount] != 3 {
		t.Errorf("expected count 3, got %v", merged.Metadata[node.MetaCount])
	}
	// First member's own metadata survives.
	if merged.Metadata[node.MetaTag] != "p" {
		t.Errorf("expected tag p from first member, got %v", merged.Metadata[node.MetaTag])
	}
	// Position and depth come from the first member.
	if merged.Position != 1 || merged.Depth != 1 {
		t.Errorf("expected position 1 depth 1, got %d %d", merged.Position, merged.Depth)
	}

	want := mergedOpen + "\n<p>one</p>\n<p>two</p>\n<div>three</div>\n" + mergedClose
	if merged.Content != want {
		t.Errorf("unexpected merged content:\n%s", merged.Content)
	}
}

func TestMergeText_SingleTextStillWrapped(t *testing.T) {
	in := []node.Provisional{textProv(0, node.NoParent, 0, 0, "<p>alone</p>", "p")}
	out := MergeText(in)

	if len(out) != 1 {
		t.Fatalf("expected 1 node, got %d", len(out))
	}
	if out[0].Metadata[node.MetaCount] != 1 {
		t.Errorf("expected count 1, got %v", out[0].Metadata[node.MetaCount])
	}
	if !strings.HasPrefix(out[0].Content, mergedOpen) {
		t.Errorf("expected wrapped content, got %q", out[0].Content)
	}
}

func TestMergeText_ParentChangeSplitsRun(t *testing.T) {
	in := []node.Provisional{
		headerProv(0, node.NoParent, 0, 0, 1, "A"),
		textProv(1, 0, 1, 1, "<p>x</p>", "p"),
		headerProv(2, 0, 2, 1, 2, "B"),
		textProv(3, 2, 3, 2, "<p>y1</p>", "p"),
		textProv(4, 2, 4, 2, "<p>y2</p>", "p"),
	}
	out := MergeText(in)

	if len(out) != 4 {
		t.Fatalf("expected 4 nodes, got %d", len(out))
	}
	if out[1].Metadata[node.MetaCount] != 1 {
		t.Errorf("first run should have count 1, got %v", out[1].Metadata[node.MetaCount])
	}
	if out[3].Metadata[node.MetaCount] != 2 {
		t.Errorf("second run should have count 2, got %v", out[3].Metadata[node.MetaCount])
	}
}

func TestMergeText_ParentReferencesRepaired(t *testing.T) {
	// The merge renumbers temp ids: header B (temp 3) slides to temp 2.
	// Nodes whose parent pointed at B must follow it.
	in := []node.Provisional{
		headerProv(0, node.NoParent, 0, 0, 1, "A"),
		textProv(1, 0, 1, 1, "<p>a1</p>", "p"),
		textProv(2, 0, 2, 1, "<p>a2</p>", "p"),
		headerProv(3, 0, 3, 1, 2, "B"),
		textProv(4, 3, 4, 2, "<p>b1</p>", "p"),
	}
	out := MergeText(in)

	if len(out) != 4 {
		t.Fatalf("expected 4 nodes, got %d", len(out))
	}
	if out[2].Kind != node.KindHeader || out[2].Content != "B" {
		t.Fatalf("expected header B at index 2, got %s %q", out[2].Kind, out[2].Content)
	}
	if out[2].TempID != 2 {
		t.Errorf("expected B renumbered to temp 2, got %d", out[2].TempID)
	}
	if out[2].ParentTemp != 0 {
		t.Errorf("expected B parent 0, got %d", out[2].ParentTemp)
	}
	if out[3].ParentTemp != 2 {
		t.Errorf("expected b1 to follow B to temp 2, got %d", out[3].ParentTemp)
	}
}

func TestMergeText_NoAdjacentTextSiblingsRemain(t *testing.T) {
	in := []node.Provisional{
		textProv(0, node.NoParent, 0, 0, "<p>pre1</p>", "p"),
		textProv(1, node.NoParent, 1, 0, "<p>pre2</p>", "p"),
		headerProv(2, node.NoParent, 2, 0, 1, "H"),
		textProv(3, 2, 3, 1, "<p>a</p>", "p"),
		textProv(4, 2, 4, 1, "<p>b</p>", "p"),
		headerProv(5, 2, 5, 1, 2, "H2"),
		textProv(6, 5, 6, 2, "<p>c</p>", "p"),
	}
	out := MergeText(in)

	for i := 1; i < len(out); i++ {
		if out[i].Kind == node.KindText && out[i-1].Kind == node.KindText &&
			out[i].ParentTemp == out[i-1].ParentTemp {
			t.Errorf("adjacent text nodes with same parent at %d and %d", i-1, i)
		}
	}
}

func TestMergeText_NonTextOrderPreserved(t *testing.T) {
	in := []node.Provisional{
		headerProv(0, node.NoParent, 0, 0, 1, "H"),
		node.Provisional{TempID: 1, ParentTemp: 0, Kind: node.KindTable, Content: "<table></table>", Metadata: map[string]any{}, Position: 1, Depth: 1},
		textProv(2, 0, 2, 1, "<p>t</p>", "p"),
		node.Provisional{TempID: 3, ParentTemp: 0, Kind: node.KindImage, Content: `<img src="x"/>`, Metadata: map[string]any{}, Position: 3, Depth: 1},
	}
	out := MergeText(in)

	wantKinds := []node.Kind{node.KindHeader, node.KindTable, node.KindText, node.KindImage}
	if len(out) != len(wantKinds) {
		t.Fatalf("expected %d nodes, got %d", len(wantKinds), len(out))
	}
	for i, k := range wantKinds {
		if out[i].Kind != k {
			t.Errorf("node[%d]: expected %s, got %s", i, k, out[i].Kind)
		}
	}
}

func TestMergeText_Empty(t *testing.T) {
	if out := MergeText(nil); len(out) != 0 {
		t.Errorf("expected empty output, got %d nodes", len(out))
	}
}
