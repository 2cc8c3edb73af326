package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"

	"docstruct/internal/node"
	"github.com/go-chi/chi/v5"
)

type registerDocumentRequest struct {
	Filename  string `json:"filename"`
	Filepath  string `json:"filepath"`
	Filesize  int64  `json:"filesize"`
	CreatedBy string `json:"created_by"`
}

// handleRegisterDocument records a source file that already exists on disk.
// Uploading and converting files is the job of the external pipeline.
func (s *Server) handleRegisterDocument(w http.ResponseWriter, r *http.Request) {
	var req registerDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Filename == "" || req.Filepath == "" {
		jsonError(w, "filename and filepath are required", http.StatusBadRequest)
		return
	}

	doc := &node.Document{
		Filename:  req.Filename,
		Filepath:  req.Filepath,
		Filesize:  req.Filesize,
		CreatedBy: req.CreatedBy,
	}
	if err := s.store.InsertDocument(r.Context(), doc); err != nil {
		jsonError(w, "failed to register document: "+err.Error(), http.StatusInternalServerError)
		return
	}
	jsonOK(w, http.StatusCreated, doc)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 100)
	sortBy := r.URL.Query().Get("sort_by")
	if sortBy == "" {
		sortBy = "created_at"
	}
	sortDesc := r.URL.Query().Get("sort_desc") != "false"

	docs, err := s.store.ListDocuments(r.Context(), skip, limit, sortBy, sortDesc)
	if err != nil {
		jsonError(w, "failed to list documents: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if docs == nil {
		docs = []node.Document{}
	}
	jsonOK(w, http.StatusOK, map[string]any{"documents": docs})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "docID")
	if !ok {
		return
	}
	found, err := s.store.DeleteDocument(r.Context(), id)
	if err != nil {
		jsonError(w, "failed to delete document: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if !found {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type registerProcessedRequest struct {
	FilePath      string `json:"file_path"`
	ResourcesPath string `json:"resources_path"`
	Format        string `json:"format"`
}

// handleRegisterProcessed records a converted rendition of a document. The
// rendered markup must already be on disk, absolute or relative to the
// configured processed directory.
func (s *Server) handleRegisterProcessed(w http.ResponseWriter, r *http.Request) {
	docID, ok := pathID(w, r, "docID")
	if !ok {
		return
	}

	var req registerProcessedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.FilePath == "" {
		jsonError(w, "file_path is required", http.StatusBadRequest)
		return
	}
	if req.Format == "" {
		req.Format = node.FormatHTML
	}
	if req.Format != node.FormatHTML && req.Format != node.FormatMarkdown {
		jsonError(w, "format must be html or markdown", http.StatusBadRequest)
		return
	}

	if _, err := s.store.GetDocument(r.Context(), docID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			jsonError(w, "document not found", http.StatusNotFound)
			return
		}
		jsonError(w, "failed to load document: "+err.Error(), http.StatusInternalServerError)
		return
	}

	filePath := req.FilePath
	if !filepath.IsAbs(filePath) {
		filePath = filepath.Join(s.cfg.ProcessedDir, filePath)
	}
	resourcesPath := req.ResourcesPath
	if resourcesPath != "" && !filepath.IsAbs(resourcesPath) {
		resourcesPath = filepath.Join(s.cfg.ProcessedDir, resourcesPath)
	}

	proc := &node.ProcessedDocument{
		DocumentID:    docID,
		FilePath:      filePath,
		ResourcesPath: resourcesPath,
		Format:        req.Format,
	}
	if err := s.store.InsertProcessed(r.Context(), proc); err != nil {
		jsonError(w, "failed to register rendition: "+err.Error(), http.StatusInternalServerError)
		return
	}
	jsonOK(w, http.StatusCreated, proc)
}

func (s *Server) handleListProcessed(w http.ResponseWriter, r *http.Request) {
	docID, ok := pathID(w, r, "docID")
	if !ok {
		return
	}
	procs, err := s.store.ListProcessedByDocument(r.Context(), docID)
	if err != nil {
		jsonError(w, "failed to list renditions: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if procs == nil {
		procs = []node.ProcessedDocument{}
	}
	jsonOK(w, http.StatusOK, map[string]any{"processed_documents": procs})
}

// pathID parses a numeric URL parameter, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil {
		jsonError(w, "invalid "+param, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return fallback
}
