package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/docuseek/docqa-go/internal/ingestion"
	"github.com/docuseek/docqa-go/internal/logging"
	"github.com/docuseek/docqa-go/internal/store"
)

// handleUpload handles POST /api/documents. It accepts one or more files as
// multipart form data under the "files" field and ingests each one
// independently. The response reports a per-file outcome; the request as a
// whole succeeds even when individual files fail.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds %d byte limit", s.cfg.MaxUploadBytes))
			return
		}
		writeError(w, r, http.StatusBadRequest, "expected multipart form data")
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck // temp file cleanup

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		// Single-file clients often use "file".
		headers = r.MultipartForm.File["file"]
	}
	if len(headers) == 0 {
		writeError(w, r, http.StatusBadRequest, "no files in request: use multipart field \"files\"")
		return
	}

	inputs := make([]ingestion.FileInput, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			writeError(w, r, http.StatusBadRequest, fmt.Sprintf("open %s: %v", h.Filename, err))
			return
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			writeError(w, r, http.StatusBadRequest, fmt.Sprintf("read %s: %v", h.Filename, err))
			return
		}
		inputs = append(inputs, ingestion.FileInput{
			Name:        h.Filename,
			ContentType: h.Header.Get("Content-Type"),
			Content:     content,
		})
	}

	results := s.pipeline.Ingest(r.Context(), inputs)

	resp := uploadResponse{Documents: make([]uploadResult, 0, len(results))}
	for _, res := range results {
		out := uploadResult{
			ID:         res.DocID,
			Name:       res.Name,
			Size:       res.Size,
			Type:       res.ContentType,
			UploadedAt: res.UploadedAt,
			ChunkCount: res.ChunkCount,
			Status:     string(store.StatusProcessed),
		}
		if res.Err != nil {
			out.Status = string(store.StatusFailed)
			out.Error = res.Err.Error()
			s.metrics.ingestDocumentsTotal.WithLabelValues("failed").Inc()
		} else {
			s.metrics.ingestDocumentsTotal.WithLabelValues("processed").Inc()
			s.metrics.ingestChunksTotal.Add(float64(res.ChunkCount))
		}
		resp.Documents = append(resp.Documents, out)
	}

	writeJSON(w, http.StatusCreated, resp)
}

// handleListDocuments handles GET /api/documents.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.docs.ListDocuments(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "listing documents failed")
		return
	}

	out := make([]documentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, documentResponse{
			ID:          d.ID,
			Name:        d.Name,
			SizeBytes:   d.Size,
			ContentType: d.ContentType,
			UploadedAt:  d.UploadedAt,
			ChunkCount:  d.ChunkCount,
			Status:      string(d.Status),
			Error:       d.Error,
		})
	}
	writeJSON(w, http.StatusOK, map[string][]documentResponse{"documents": out})
}

// handleDeleteDocument handles DELETE /api/documents/{id}. The document is
// removed from the metadata store first; the index removal follows so that a
// missing ID never leaves index entries behind.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())
	id := r.PathValue("id")

	if err := s.docs.DeleteDocument(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, fmt.Sprintf("document %s not found", id))
			return
		}
		writeError(w, r, http.StatusInternalServerError, "deleting document failed")
		return
	}
	if err := s.index.RemoveDocument(r.Context(), id); err != nil {
		// The metadata row is already gone; report the inconsistency loudly
		// but do not fail the request.
		log.Error("index removal failed after store delete",
			slog.String("doc_id", id),
			slog.Any("error", err),
		)
	}

	log.Info("document deleted", slog.String("doc_id", id))
	w.WriteHeader(http.StatusNoContent)
}
