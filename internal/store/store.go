package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"docstruct/internal/node"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
)

// Store persists documents and their structural nodes through bun.
type Store struct {
	db *bun.DB
}

func New(db *bun.DB) *Store {
	return &Store{db: db}
}

// Connect opens a postgres-backed bun DB. With debug set, every query is
// logged; otherwise only failed ones.
func Connect(dsn string, debug bool) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(debug)))
	return db
}

// Migrate creates the schema. Parent references are maintained by the
// two-phase save protocol rather than a database constraint, so the tables
// carry only the lookup indexes.
func (s *Store) Migrate(ctx context.Context) error {
	models := []any{
		(*node.Document)(nil),
		(*node.ProcessedDocument)(nil),
		(*node.Node)(nil),
	}
	for _, m := range models {
		if _, err := s.db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	indexes := []struct {
		name    string
		columns []string
	}{
		{"idx_document_node_doc_position", []string{"document_id", "position"}},
		{"idx_document_node_doc_kind", []string{"document_id", "kind"}},
		{"idx_document_node_parent_id", []string{"parent_id"}},
	}
	for _, idx := range indexes {
		_, err := s.db.NewCreateIndex().
			Model((*node.Node)(nil)).
			Index(idx.name).
			Column(idx.columns...).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("create index %s: %w", idx.name, err)
		}
	}
	return nil
}

// SaveStructure materializes a provisional node list as rows, atomically.
// Rows reference their parent within the same batch, so the write happens in
// two phases inside one transaction: insert every node parentless to obtain
// stable ids, then patch each parent pointer through the identity map. Any
// failure rolls the whole batch back.
func (s *Store) SaveStructure(ctx context.Context, documentID int64, provs []node.Provisional) ([]node.Node, error) {
	saved := make([]node.Node, len(provs))

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		ids := make(map[int]int64, len(provs))
		for i, p := range provs {
			saved[i] = node.Node{
				DocumentID: documentID,
				Kind:       p.Kind,
				Content:    p.Content,
				Metadata:   p.Metadata,
				Position:   p.Position,
				Depth:      p.Depth,
			}
			if _, err := tx.NewInsert().Model(&saved[i]).Exec(ctx); err != nil {
				return fmt.Errorf("insert node at position %d: %w", p.Position, err)
			}
			ids[p.TempID] = saved[i].ID
		}

		for i, p := range provs {
			if p.ParentTemp == node.NoParent {
				continue
			}
			parentID, ok := ids[p.ParentTemp]
			if !ok {
				return fmt.Errorf("node at position %d references unknown parent %d", p.Position, p.ParentTemp)
			}
			saved[i].ParentID = &parentID
			_, err := tx.NewUpdate().
				Model(&saved[i]).
				Column("parent_id").
				WherePK().
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("patch parent at position %d: %w", p.Position, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// NodesByDocument returns every node of a document in document order.
func (s *Store) NodesByDocument(ctx context.Context, documentID int64) ([]node.Node, error) {
	var nodes []node.Node
	err := s.db.NewSelect().
		Model(&nodes).
		Where("document_id = ?", documentID).
		Order("position ASC").
		Scan(ctx)
	return nodes, err
}

// HeadersByDocument returns only the header nodes, in document order.
func (s *Store) HeadersByDocument(ctx context.Context, documentID int64) ([]node.Node, error) {
	var nodes []node.Node
	err := s.db.NewSelect().
		Model(&nodes).
		Where("document_id = ?", documentID).
		Where("kind = ?", node.KindHeader).
		Order("position ASC").
		Scan(ctx)
	return nodes, err
}

// NodeByID returns a single node or sql.ErrNoRows.
func (s *Store) NodeByID(ctx context.Context, id int64) (*node.Node, error) {
	n := new(node.Node)
	err := s.db.NewSelect().Model(n).Where("n.id = ?", id).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// NodesAfter returns a document's nodes past the given position, ordered.
func (s *Store) NodesAfter(ctx context.Context, documentID int64, position int) ([]node.Node, error) {
	var nodes []node.Node
	err := s.db.NewSelect().
		Model(&nodes).
		Where("document_id = ?", documentID).
		Where("position > ?", position).
		Order("position ASC").
		Scan(ctx)
	return nodes, err
}

// SearchHeaders does a case-insensitive substring match over header content.
func (s *Store) SearchHeaders(ctx context.Context, documentID int64, query string) ([]node.Node, error) {
	var nodes []node.Node
	err := s.db.NewSelect().
		Model(&nodes).
		Where("document_id = ?", documentID).
		Where("kind = ?", node.KindHeader).
		Where("lower(content) LIKE ?", "%"+strings.ToLower(query)+"%").
		Order("position ASC").
		Scan(ctx)
	return nodes, err
}

// DeleteNodes removes every node of a document and reports how many.
func (s *Store) DeleteNodes(ctx context.Context, documentID int64) (int64, error) {
	res, err := s.db.NewDelete().
		Model((*node.Node)(nil)).
		Where("document_id = ?", documentID).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
