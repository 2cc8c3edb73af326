package structure

import "docstruct/internal/node"

// BuildForest assembles a flat, position-ordered node list into nested trees
// through a parent map. Because the scan is in pure document order, every
// children list comes out in document order regardless of how depths
// interleave. A node whose parent is not part of the input acts as a root.
func BuildForest(nodes []node.Node) []*node.TreeNode {
	index := make(map[int64]*node.TreeNode, len(nodes))
	for i := range nodes {
		index[nodes[i].ID] = &node.TreeNode{
			Data:     &nodes[i],
			Children: []*node.TreeNode{},
		}
	}

	roots := []*node.TreeNode{}
	for i := range nodes {
		t := index[nodes[i].ID]
		pid := nodes[i].ParentID
		if pid == nil {
			roots = append(roots, t)
			continue
		}
		if parent, ok := index[*pid]; ok {
			parent.Children = append(parent.Children, t)
		} else {
			roots = append(roots, t)
		}
	}
	return roots
}

// BuildSimplifiedForest is BuildForest reduced to the simplified TOC view:
// id, content, parent and metadata only.
func BuildSimplifiedForest(nodes []node.Node) []*node.SimplifiedTreeNode {
	index := make(map[int64]*node.SimplifiedTreeNode, len(nodes))
	for i := range nodes {
		index[nodes[i].ID] = &node.SimplifiedTreeNode{
			Data: node.SimplifiedHeader{
				ID:       nodes[i].ID,
				Content:  nodes[i].Content,
				ParentID: nodes[i].ParentID,
				Metadata: nodes[i].Metadata,
			},
			Children: []*node.SimplifiedTreeNode{},
		}
	}

	roots := []*node.SimplifiedTreeNode{}
	for i := range nodes {
		t := index[nodes[i].ID]
		pid := nodes[i].ParentID
		if pid == nil {
			roots = append(roots, t)
			continue
		}
		if parent, ok := index[*pid]; ok {
			parent.Children = append(parent.Children, t)
		} else {
			roots = append(roots, t)
		}
	}
	return roots
}

// CutSubtree returns the target plus every following node up to, and
// excluding, the first header whose depth does not exceed the target's.
// The input must be ordered by position and start past the target.
func CutSubtree(target node.Node, following []node.Node) []node.Node {
	result := []node.Node{target}
	for _, n := range following {
		if n.Kind == node.KindHeader && n.Depth <= target.Depth {
			break
		}
		result = append(result, n)
	}
	return result
}
