package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"time"

	"github.com/brunobiangulo/docaccess"
)

const (
	msgNoFile       = "No file uploaded"
	msgUnsupported  = "Only .pdf and .docx files are allowed"
	msgTooLarge     = "File too large"
	msgTimeout      = "Analysis timed out"
	msgCanceled     = "Request canceled"
	msgInternalFail = "Internal server error"
)

type handler struct {
	evaluator docaccess.Evaluator
	cfg       docaccess.ServerConfig
}

func newHandler(e docaccess.Evaluator, cfg docaccess.ServerConfig) *handler {
	return &handler{evaluator: e, cfg: cfg}
}

// POST /validate-file
// Accepts a multipart upload in the "file" field and returns the analysis.
func (h *handler) handleValidateFile(w http.ResponseWriter, r *http.Request) {
	// Leave room for multipart framing around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes+64<<10)

	if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeMessage(w, http.StatusBadRequest, msgTooLarge)
			return
		}
		writeMessage(w, http.StatusBadRequest, msgNoFile)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, msgNoFile)
		return
	}
	defer file.Close()

	if header.Size > h.cfg.MaxUploadBytes {
		writeMessage(w, http.StatusBadRequest, msgTooLarge)
		return
	}

	mediaType, ok := uploadMediaType(header.Filename, header.Header.Get("Content-Type"))
	if !ok {
		writeMessage(w, http.StatusBadRequest, msgUnsupported)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, msgInternalFail)
		slog.Error("reading upload", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.AnalysisTimeout)
	defer cancel()

	start := time.Now()
	res, err := h.evaluator.Analyze(ctx, docaccess.Document{
		// Sanitise filename; it only ever reaches the logs.
		Name:      filepath.Base(header.Filename),
		Data:      data,
		MediaType: mediaType,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			writeMessage(w, http.StatusGatewayTimeout, msgTimeout)
		} else {
			writeMessage(w, http.StatusServiceUnavailable, msgCanceled)
		}
		slog.Warn("analysis aborted", "file", header.Filename, "error", err)
		return
	}

	slog.Info("file validated",
		"file", filepath.Base(header.Filename),
		"result", string(res.Kind()),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	writeJSON(w, http.StatusOK, res)
}

// uploadMediaType accepts a file only when both its extension and its
// declared part Content-Type name the same supported type.
func uploadMediaType(filename, contentType string) (docaccess.MediaType, bool) {
	fromExt, ok := docaccess.MediaTypeFromExt(filepath.Ext(filename))
	if !ok {
		return "", false
	}
	declared, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", false
	}
	if mt := docaccess.MediaType(declared); !mt.Supported() || mt != fromExt {
		return "", false
	}
	return fromExt, true
}

// GET /health
func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
