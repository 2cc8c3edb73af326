package api

import (
	"net/http"
)

// handleRunStructure executes one structuring run over a rendition.
func (s *Server) handleRunStructure(w http.ResponseWriter, r *http.Request) {
	procID, ok := pathID(w, r, "procID")
	if !ok {
		return
	}
	nodes, err := s.svc.Run(r.Context(), procID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	jsonOK(w, http.StatusCreated, map[string]any{
		"document_id": procID,
		"node_count":  len(nodes),
	})
}

func (s *Server) handleGetStructure(w http.ResponseWriter, r *http.Request) {
	procID, ok := pathID(w, r, "procID")
	if !ok {
		return
	}
	forest, err := s.svc.Structure(r.Context(), procID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	jsonOK(w, http.StatusOK, map[string]any{"structure": forest})
}

func (s *Server) handleDeleteStructure(w http.ResponseWriter, r *http.Request) {
	procID, ok := pathID(w, r, "procID")
	if !ok {
		return
	}
	count, err := s.svc.DeleteStructure(r.Context(), procID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	jsonOK(w, http.StatusOK, map[string]any{"deleted": count})
}

// handleGetTOC returns the header-only tree; ?simplified=true reduces each
// node to id, content, parent and metadata.
func (s *Server) handleGetTOC(w http.ResponseWriter, r *http.Request) {
	procID, ok := pathID(w, r, "procID")
	if !ok {
		return
	}

	if r.URL.Query().Get("simplified") == "true" {
		forest, err := s.svc.SimplifiedTOC(r.Context(), procID)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		jsonOK(w, http.StatusOK, map[string]any{"toc": forest})
		return
	}

	forest, err := s.svc.TOC(r.Context(), procID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	jsonOK(w, http.StatusOK, map[string]any{"toc": forest})
}

func (s *Server) handleSearchHeaders(w http.ResponseWriter, r *http.Request) {
	procID, ok := pathID(w, r, "procID")
	if !ok {
		return
	}
	query := r.URL.Query().Get("q")
	if query == "" {
		jsonError(w, "q query parameter is required", http.StatusBadRequest)
		return
	}

	matches, err := s.svc.SearchHeaders(r.Context(), procID, query)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	jsonOK(w, http.StatusOK, map[string]any{
		"results": matches,
		"count":   len(matches),
	})
}

// handleGetSubtree returns a header node plus everything under it.
func (s *Server) handleGetSubtree(w http.ResponseWriter, r *http.Request) {
	nodeID, ok := pathID(w, r, "nodeID")
	if !ok {
		return
	}
	nodes, err := s.svc.Subtree(r.Context(), nodeID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	jsonOK(w, http.StatusOK, map[string]any{"nodes": nodes})
}
