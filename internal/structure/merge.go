package structure

import (
	"strings"

	"docstruct/internal/node"
)

// mergedOpen and mergedClose wrap the members of a merged text run.
const (
	mergedOpen  = `<div class="merged-text">`
	mergedClose = `</div>`
)

// MergeText coalesces maximal runs of consecutive text nodes that share the
// same parent into a single text node. Non-text nodes pass through in their
// original relative order. Because merging renumbers temp ids, every parent
// reference is repaired through an explicit old-id to new-id map threaded out
// of the merge loop.
func MergeText(nodes []node.Provisional) []node.Provisional {
	if len(nodes) == 0 {
		return nodes
	}

	result := []node.Provisional{}
	remap := make(map[int]int)

	var (
		run       []string
		runMeta   map[string]any
		runParent int
		runPos    int
		runDepth  int
	)

	flush := func() {
		if len(run) == 0 {
			return
		}
		meta := map[string]any{
			node.MetaMerged: true,
			node.MetaCount:  len(run),
		}
		for k, v := range runMeta {
			if _, taken := meta[k]; !taken {
				meta[k] = v
			}
		}
		result = append(result, node.Provisional{
			TempID:     len(result),
			ParentTemp: runParent,
			Kind:       node.KindText,
			Content:    mergedOpen + "\n" + strings.Join(run, "\n") + "\n" + mergedClose,
			Metadata:   meta,
			Position:   runPos,
			Depth:      runDepth,
		})
		run = nil
		runMeta = nil
	}

	for _, n := range nodes {
		if n.Kind == node.KindText {
			if len(run) > 0 && n.ParentTemp != runParent {
				flush()
			}
			if len(run) == 0 {
				// First member fixes the run's parent, position, depth and
				// carries its own metadata into the merged node.
				runParent = n.ParentTemp
				runPos = n.Position
				runDepth = n.Depth
				runMeta = n.Metadata
			}
			run = append(run, n.Content)
			continue
		}

		flush()
		kept := n
		kept.TempID = len(result)
		remap[n.TempID] = kept.TempID
		result = append(result, kept)
	}
	flush()

	// Only headers can be parents, and every surviving header has a remap
	// entry, so a missing entry means the reference was already final.
	for i := range result {
		if p := result[i].ParentTemp; p != node.NoParent {
			if np, ok := remap[p]; ok {
				result[i].ParentTemp = np
			}
		}
	}
	return result
}
