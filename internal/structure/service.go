package structure

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"docstruct/internal/node"
	"github.com/yuin/goldmark"
)

// Store is the persistence surface the engine needs: bulk insert with parent
// patching, ordered reads scoped to one document, and delete-by-document.
type Store interface {
	SaveStructure(ctx context.Context, documentID int64, provs []node.Provisional) ([]node.Node, error)
	NodesByDocument(ctx context.Context, documentID int64) ([]node.Node, error)
	HeadersByDocument(ctx context.Context, documentID int64) ([]node.Node, error)
	NodeByID(ctx context.Context, id int64) (*node.Node, error)
	NodesAfter(ctx context.Context, documentID int64, position int) ([]node.Node, error)
	SearchHeaders(ctx context.Context, documentID int64, query string) ([]node.Node, error)
	DeleteNodes(ctx context.Context, documentID int64) (int64, error)
	GetProcessed(ctx context.Context, id int64) (*node.ProcessedDocument, error)
}

// Service runs structuring and answers tree queries for processed documents.
type Service struct {
	store          Store
	log            *slog.Logger
	maxSourceBytes int64

	mu       sync.Mutex
	inflight map[int64]struct{}
}

func NewService(store Store, log *slog.Logger, maxSourceBytes int64) *Service {
	return &Service{
		store:          store,
		log:            log,
		maxSourceBytes: maxSourceBytes,
		inflight:       make(map[int64]struct{}),
	}
}

// acquire claims the per-document run slot. Two runs interleaving their
// delete and insert phases over the same document would corrupt the tree, so
// a second request is rejected outright instead of queued.
func (s *Service) acquire(documentID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[documentID]; busy {
		return ErrStructuringInProgress
	}
	s.inflight[documentID] = struct{}{}
	return nil
}

func (s *Service) release(documentID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, documentID)
}

// Run structures one processed document: read its rendered markup, flatten,
// merge consecutive text, drop any previous structure and persist the new
// one. Deleting first makes repeated runs idempotent in effect.
func (s *Service) Run(ctx context.Context, processedID int64) ([]node.Node, error) {
	proc, err := s.store.GetProcessed(ctx, processedID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Resource: "processed document", ID: processedID}
	}
	if err != nil {
		return nil, &StorageError{Op: "lookup", Err: err}
	}

	if err := s.acquire(processedID); err != nil {
		return nil, err
	}
	defer s.release(processedID)

	src, err := s.readSource(proc)
	if err != nil {
		return nil, err
	}

	provs, err := Flatten(bytes.NewReader(src))
	if err != nil {
		return nil, err
	}
	provs = MergeText(provs)

	if _, err := s.store.DeleteNodes(ctx, processedID); err != nil {
		return nil, &StorageError{Op: "delete previous structure", Err: err}
	}
	saved, err := s.store.SaveStructure(ctx, processedID, provs)
	if err != nil {
		return nil, &StorageError{Op: "save structure", Err: err}
	}

	s.log.Info("structured document",
		"document_id", processedID,
		"format", proc.Format,
		"nodes", len(saved),
	)
	return saved, nil
}

// readSource loads the rendition's markup, converting markdown to HTML so a
// single flattening pass serves both formats.
func (s *Service) readSource(proc *node.ProcessedDocument) ([]byte, error) {
	if proc.Format != node.FormatHTML && proc.Format != node.FormatMarkdown {
		return nil, &FormatError{Reason: fmt.Sprintf("unsupported rendition format %q", proc.Format)}
	}

	info, err := os.Stat(proc.FilePath)
	if err != nil {
		return nil, fmt.Errorf("stat source: %w", err)
	}
	if s.maxSourceBytes > 0 && info.Size() > s.maxSourceBytes {
		return nil, &FormatError{Reason: fmt.Sprintf("source exceeds %d bytes", s.maxSourceBytes)}
	}

	src, err := os.ReadFile(proc.FilePath)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}

	if proc.Format == node.FormatMarkdown {
		var buf bytes.Buffer
		if err := goldmark.Convert(src, &buf); err != nil {
			return nil, &FormatError{Reason: "render markdown", Err: err}
		}
		return buf.Bytes(), nil
	}
	return src, nil
}

// Structure returns the full node forest of a document.
func (s *Service) Structure(ctx context.Context, documentID int64) ([]*node.TreeNode, error) {
	nodes, err := s.store.NodesByDocument(ctx, documentID)
	if err != nil {
		return nil, &StorageError{Op: "load nodes", Err: err}
	}
	return BuildForest(nodes), nil
}

// TOC returns the header-only forest of a document.
func (s *Service) TOC(ctx context.Context, documentID int64) ([]*node.TreeNode, error) {
	headers, err := s.store.HeadersByDocument(ctx, documentID)
	if err != nil {
		return nil, &StorageError{Op: "load headers", Err: err}
	}
	return BuildForest(headers), nil
}

// SimplifiedTOC is TOC reduced to id/content/parent/metadata per node.
func (s *Service) SimplifiedTOC(ctx context.Context, documentID int64) ([]*node.SimplifiedTreeNode, error) {
	headers, err := s.store.HeadersByDocument(ctx, documentID)
	if err != nil {
		return nil, &StorageError{Op: "load headers", Err: err}
	}
	return BuildSimplifiedForest(headers), nil
}

// Subtree returns a header node and everything under it: all following nodes
// up to the next header of equal or shallower depth.
func (s *Service) Subtree(ctx context.Context, nodeID int64) ([]node.Node, error) {
	target, err := s.store.NodeByID(ctx, nodeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Resource: "node", ID: nodeID}
	}
	if err != nil {
		return nil, &StorageError{Op: "load node", Err: err}
	}
	if target.Kind != node.KindHeader {
		return nil, &FormatError{Reason: fmt.Sprintf("node %d is %s, not a header", nodeID, target.Kind)}
	}

	following, err := s.store.NodesAfter(ctx, target.DocumentID, target.Position)
	if err != nil {
		return nil, &StorageError{Op: "load nodes", Err: err}
	}
	return CutSubtree(*target, following), nil
}

// SearchHeaders matches headers by case-insensitive substring. No match is an
// empty result, never an error.
func (s *Service) SearchHeaders(ctx context.Context, documentID int64, query string) ([]node.Node, error) {
	matches, err := s.store.SearchHeaders(ctx, documentID, query)
	if err != nil {
		return nil, &StorageError{Op: "search headers", Err: err}
	}
	if matches == nil {
		matches = []node.Node{}
	}
	return matches, nil
}

// DeleteStructure removes all nodes of a document and reports the count.
func (s *Service) DeleteStructure(ctx context.Context, documentID int64) (int64, error) {
	count, err := s.store.DeleteNodes(ctx, documentID)
	if err != nil {
		return 0, &StorageError{Op: "delete structure", Err: err}
	}
	s.log.Info("deleted document structure", "document_id", documentID, "nodes", count)
	return count, nil
}
