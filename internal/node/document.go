package node

import (
	"time"

	"github.com/uptrace/bun"
)

// Document is a registered source file. The file itself lives wherever the
// external upload/conversion pipeline put it; only metadata is recorded here.
type Document struct {
	bun.BaseModel `bun:"table:documents,alias:d"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	PublicID  string    `bun:"public_id,notnull,unique" json:"public_id"`
	Filename  string    `bun:"filename,notnull" json:"filename"`
	Filepath  string    `bun:"filepath,notnull,unique" json:"filepath"`
	Filesize  int64     `bun:"filesize,notnull" json:"filesize"`
	CreatedBy string    `bun:"created_by" json:"created_by"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// Processed document formats the structuring engine accepts.
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

// ProcessedDocument is one converted rendition of a Document: the rendered
// markup file on disk plus the folder of extracted image resources. Conversion
// is performed by an external service; this system only consumes the result.
type ProcessedDocument struct {
	bun.BaseModel `bun:"table:processed_documents,alias:pd"`

	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	DocumentID    int64     `bun:"document_id,notnull" json:"document_id"`
	FilePath      string    `bun:"file_path,notnull,unique" json:"file_path"`
	ResourcesPath string    `bun:"resources_path" json:"resources_path"`
	Format        string    `bun:"format,notnull,default:'html'" json:"format"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}
