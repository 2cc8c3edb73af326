package structure

import (
	"testing"

	"docstruct/internal/node"
)

func ptr(v int64) *int64 { return &v }

func persisted(id int64, parent *int64, kind node.Kind, content string, position, depth int) node.Node {
	return node.Node{
		ID:         id,
		DocumentID: 1,
		ParentID:   parent,
		Kind:       kind,
		Content:    content,
		Position:   position,
		Depth:      depth,
	}
}

func TestBuildForest_ChildrenInDocumentOrder(t *testing.T) {
	// A -> [x, B -> [y], C -> [z]] with everything flat, ordered by position.
	nodes := []node.Node{
		persisted(10, nil, node.KindHeader, "A", 0, 0),
		persisted(11, ptr(10), node.KindText, "x", 1, 1),
		persisted(12, ptr(10), node.KindHeader, "B", 2, 1),
		persisted(13, ptr(12), node.KindText, "y", 3, 2),
		persisted(14, ptr(10), node.KindHeader, "C", 4, 1),
		persisted(15, ptr(14), node.KindText, "z", 5, 2),
	}
	forest := BuildForest(nodes)

	if len(forest) != 1 {
		t.Fatalf("expected 1 root, got %d", len(forest))
	}
	root := forest[0]
	if root.Data.Content != "A" {
		t.Fatalf("expected root A, got %q", root.Data.Content)
	}
	if len(root.Children) != 3 {
		t.Fatalf("expected 3 children of A, got %d", len(root.Children))
	}
	wantOrder := []string{"x", "B", "C"}
	for i, w := range wantOrder {
		if root.Children[i].Data.Content != w {
			t.Errorf("child[%d]: expected %q, got %q", i, w, root.Children[i].Data.Content)
		}
	}
	if len(root.Children[1].Children) != 1 || root.Children[1].Children[0].Data.Content != "y" {
		t.Errorf("expected y under B")
	}
	if len(root.Children[2].Children) != 1 || root.Children[2].Children[0].Data.Content != "z" {
		t.Errorf("expected z under C")
	}
}

func TestBuildForest_MultipleRoots(t *testing.T) {
	nodes := []node.Node{
		persisted(1, nil, node.KindText, "preamble", 0, 0),
		persisted(2, nil, node.KindHeader, "One", 1, 0),
		persisted(3, ptr(2), node.KindText, "body", 2, 1),
		persisted(4, nil, node.KindHeader, "Two", 3, 0),
	}
	forest := BuildForest(nodes)

	if len(forest) != 3 {
		t.Fatalf("expected 3 roots, got %d", len(forest))
	}
	wantOrder := []string{"preamble", "One", "Two"}
	for i, w := range wantOrder {
		if forest[i].Data.Content != w {
			t.Errorf("root[%d]: expected %q, got %q", i, w, forest[i].Data.Content)
		}
	}
}

func TestBuildForest_UnknownParentBecomesRoot(t *testing.T) {
	// Restricted views (headers only) can reference a parent outside the
	// input; the node must not silently disappear.
	nodes := []node.Node{
		persisted(5, ptr(99), node.KindHeader, "orphan", 0, 1),
	}
	forest := BuildForest(nodes)
	if len(forest) != 1 || forest[0].Data.Content != "orphan" {
		t.Fatalf("expected orphan kept as root, got %d roots", len(forest))
	}
}

func TestBuildSimplifiedForest_DropsPositionalFields(t *testing.T) {
	nodes := []node.Node{
		persisted(1, nil, node.KindHeader, "A", 0, 0),
		persisted(2, ptr(1), node.KindHeader, "B", 1, 1),
	}
	nodes[1].Metadata = map[string]any{node.MetaLevel: 2}

	forest := BuildSimplifiedForest(nodes)
	if len(forest) != 1 {
		t.Fatalf("expected 1 root, got %d", len(forest))
	}
	child := forest[0].Children[0].Data
	if child.ID != 2 || child.Content != "B" {
		t.Errorf("unexpected child data: %+v", child)
	}
	if child.ParentID == nil || *child.ParentID != 1 {
		t.Errorf("expected parent id 1, got %v", child.ParentID)
	}
	if child.Metadata[node.MetaLevel] != 2 {
		t.Errorf("expected level metadata, got %v", child.Metadata)
	}
}

func TestCutSubtree_StopsAtEqualOrShallowerHeader(t *testing.T) {
	target := persisted(12, ptr(10), node.KindHeader, "B", 2, 1)
	following := []node.Node{
		persisted(13, ptr(12), node.KindText, "y", 3, 2),
		persisted(16, ptr(12), node.KindHeader, "B.1", 4, 2),
		persisted(17, ptr(16), node.KindText, "deep", 5, 3),
		persisted(14, ptr(10), node.KindHeader, "C", 6, 1), // boundary
		persisted(15, ptr(14), node.KindText, "z", 7, 2),
	}
	got := CutSubtree(target, following)

	want := []string{"B", "y", "B.1", "deep"}
	if len(got) != len(want) {
		t.Fatalf("expected %d nodes, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i].Content != w {
			t.Errorf("subtree[%d]: expected %q, got %q", i, w, got[i].Content)
		}
	}
	// Everything after the target sits strictly past it, and every included
	// header is strictly deeper.
	for _, n := range got[1:] {
		if n.Position <= target.Position {
			t.Errorf("node %q at position %d not past target", n.Content, n.Position)
		}
		if n.Kind == node.KindHeader && n.Depth <= target.Depth {
			t.Errorf("header %q at depth %d should have been excluded", n.Content, n.Depth)
		}
	}
}

func TestCutSubtree_HeaderWithNoChildren(t *testing.T) {
	target := persisted(1, nil, node.KindHeader, "lonely", 0, 0)
	following := []node.Node{
		persisted(2, nil, node.KindHeader, "next", 1, 0),
	}
	got := CutSubtree(target, following)
	if len(got) != 1 || got[0].Content != "lonely" {
		t.Fatalf("expected only the target, got %d nodes", len(got))
	}
}
