package store

import (
	"context"
	"fmt"

	"docstruct/internal/node"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Sortable document list columns; anything else falls back to created_at.
var documentSortColumns = map[string]bool{
	"id":         true,
	"filename":   true,
	"filesize":   true,
	"created_at": true,
}

// InsertDocument registers a document record and assigns its public id.
func (s *Store) InsertDocument(ctx context.Context, doc *node.Document) error {
	if doc.PublicID == "" {
		doc.PublicID = uuid.NewString()
	}
	_, err := s.db.NewInsert().Model(doc).Exec(ctx)
	return err
}

// GetDocument returns a document by id or sql.ErrNoRows.
func (s *Store) GetDocument(ctx context.Context, id int64) (*node.Document, error) {
	doc := new(node.Document)
	err := s.db.NewSelect().Model(doc).Where("d.id = ?", id).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ListDocuments pages through registered documents with optional sorting.
func (s *Store) ListDocuments(ctx context.Context, skip, limit int, sortBy string, desc bool) ([]node.Document, error) {
	if !documentSortColumns[sortBy] {
		sortBy = "created_at"
	}
	dir := "ASC"
	if desc {
		dir = "DESC"
	}

	var docs []node.Document
	err := s.db.NewSelect().
		Model(&docs).
		OrderExpr(fmt.Sprintf("%s %s", sortBy, dir)).
		Offset(skip).
		Limit(limit).
		Scan(ctx)
	return docs, err
}

// DeleteDocument removes a document, its renditions and all their nodes in
// one transaction. Returns false when the document does not exist.
func (s *Store) DeleteDocument(ctx context.Context, id int64) (bool, error) {
	found := false
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().
			Model((*node.Document)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		found = true

		var processedIDs []int64
		err = tx.NewSelect().
			Model((*node.ProcessedDocument)(nil)).
			Column("id").
			Where("document_id = ?", id).
			Scan(ctx, &processedIDs)
		if err != nil {
			return err
		}
		if len(processedIDs) == 0 {
			return nil
		}

		_, err = tx.NewDelete().
			Model((*node.Node)(nil)).
			Where("document_id IN (?)", bun.In(processedIDs)).
			Exec(ctx)
		if err != nil {
			return err
		}
		_, err = tx.NewDelete().
			Model((*node.ProcessedDocument)(nil)).
			Where("document_id = ?", id).
			Exec(ctx)
		return err
	})
	return found, err
}

// InsertProcessed registers a converted rendition of a document.
func (s *Store) InsertProcessed(ctx context.Context, proc *node.ProcessedDocument) error {
	_, err := s.db.NewInsert().Model(proc).Exec(ctx)
	return err
}

// GetProcessed returns a rendition by id or sql.ErrNoRows.
func (s *Store) GetProcessed(ctx context.Context, id int64) (*node.ProcessedDocument, error) {
	proc := new(node.ProcessedDocument)
	err := s.db.NewSelect().Model(proc).Where("pd.id = ?", id).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return proc, nil
}

// ListProcessedByDocument returns a document's renditions, oldest first.
func (s *Store) ListProcessedByDocument(ctx context.Context, documentID int64) ([]node.ProcessedDocument, error) {
	var procs []node.ProcessedDocument
	err := s.db.NewSelect().
		Model(&procs).
		Where("document_id = ?", documentID).
		Order("id ASC").
		Scan(ctx)
	return procs, err
}
