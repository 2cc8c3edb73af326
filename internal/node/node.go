package node

import (
	"time"

	"github.com/uptrace/bun"
)

// Kind classifies a structural node.
type Kind string

const (
	KindHeader Kind = "header"
	KindTable  Kind = "table"
	KindImage  Kind = "image"
	KindText   Kind = "text"
)

// Metadata keys used by the structuring engine.
const (
	MetaLevel  = "level"  // header level 1-6
	MetaRows   = "rows"   // table row count
	MetaCols   = "cols"   // cell count of the first table row
	MetaSrc    = "src"    // image source
	MetaAlt    = "alt"    // image alt text
	MetaTag    = "tag"    // source tag of a text block
	MetaMerged = "merged" // true on a merged text node
	MetaCount  = "count"  // member count of a merged text node
)

// Node is one structural unit of a processed document. ParentID, when set,
// always references a header node in the same document.
type Node struct {
	bun.BaseModel `bun:"table:document_nodes,alias:n"`

	ID         int64          `bun:"id,pk,autoincrement" json:"id"`
	DocumentID int64          `bun:"document_id,notnull" json:"document_id"`
	ParentID   *int64         `bun:"parent_id" json:"parent_id"`
	Kind       Kind           `bun:"kind,notnull" json:"kind"`
	Content    string         `bun:"content" json:"content"`
	Metadata   map[string]any `bun:"metadata,type:jsonb" json:"metadata"`
	Position   int            `bun:"position,notnull" json:"position"`
	Depth      int            `bun:"depth,notnull" json:"depth"`
	CreatedAt  time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// NoParent marks a provisional node with no enclosing header.
const NoParent = -1

// Provisional is a node produced by the flattening parser, before persistence
// assigns stable identities. TempID is the node's index in the provisional
// list; ParentTemp refers to another node's TempID or is NoParent.
type Provisional struct {
	TempID     int
	ParentTemp int
	Kind       Kind
	Content    string
	Metadata   map[string]any
	Position   int
	Depth      int
}

// TreeNode is one element of a reconstructed forest.
type TreeNode struct {
	Data     *Node       `json:"data"`
	Children []*TreeNode `json:"children"`
}

// SimplifiedHeader is the reduced header view used by the simplified TOC.
type SimplifiedHeader struct {
	ID       int64          `json:"id"`
	Content  string         `json:"content"`
	ParentID *int64         `json:"parent_id"`
	Metadata map[string]any `json:"metadata"`
}

// SimplifiedTreeNode is a forest element of the simplified TOC.
type SimplifiedTreeNode struct {
	Data     SimplifiedHeader      `json:"data"`
	Children []*SimplifiedTreeNode `json:"children"`
}
