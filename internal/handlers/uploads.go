package handlers

import (
	"net/http"

	"church-site/backend/internal/httpjson"
	"church-site/backend/internal/storage"

	"github.com/go-chi/chi/v5"
)

// 32 MB in-memory cap for multipart parsing; larger parts spill to disk.
const maxMultipartMemory = 32 << 20

// Uploads serves the admin file endpoints. Each upload kind has its own
// facade with its own bucket prefix, accepted types and size cap.
type Uploads struct {
	facades map[string]*storage.Facade
}

func NewUploads(facades map[string]*storage.Facade) *Uploads {
	return &Uploads{facades: facades}
}

func (h *Uploads) facadeFor(w http.ResponseWriter, r *http.Request) *storage.Facade {
	kind := chi.URLParam(r, "kind")
	f, ok := h.facades[kind]
	if !ok {
		httpjson.Error(w, http.StatusNotFound, "unknown upload kind: "+kind)
		return nil
	}
	return f
}

// Upload accepts one multipart file under the "file" field, validates it and
// streams it into the bucket. Validation failures are 400 with the user-facing
// message; the bucket is never contacted for them.
func (h *Uploads) Upload(w http.ResponseWriter, r *http.Request) {
	f := h.facadeFor(w, r)
	if f == nil {
		return
	}
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, hdr, err := r.FormFile("file")
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	res, err := f.UploadFile(r.Context(), hdr.Filename, hdr.Header.Get("Content-Type"), file, hdr.Size)
	if err != nil {
		status := http.StatusInternalServerError
		if storage.IsValidation(err) {
			status = http.StatusBadRequest
		}
		httpjson.Error(w, status, err.Error())
		return
	}
	httpjson.Write(w, http.StatusCreated, res)
}

func (h *Uploads) List(w http.ResponseWriter, r *http.Request) {
	f := h.facadeFor(w, r)
	if f == nil {
		return
	}
	out, err := f.ListFiles(r.Context(), r.URL.Query().Get("prefix"))
	if err != nil {
		httpjson.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"files": out})
}

type deleteFileReq struct {
	Path string `json:"path"`
}

func (h *Uploads) Delete(w http.ResponseWriter, r *http.Request) {
	f := h.facadeFor(w, r)
	if f == nil {
		return
	}
	var req deleteFileReq
	if err := httpjson.Read(r, &req); err != nil || req.Path == "" {
		httpjson.Error(w, http.StatusBadRequest, "path is required")
		return
	}
	if err := f.DeleteFile(r.Context(), req.Path); err != nil {
		httpjson.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"ok": true})
}

type metadataReq struct {
	Path     string            `json:"path"`
	Metadata map[string]string `json:"metadata"`
}

func (h *Uploads) UpdateMetadata(w http.ResponseWriter, r *http.Request) {
	f := h.facadeFor(w, r)
	if f == nil {
		return
	}
	var req metadataReq
	if err := httpjson.Read(r, &req); err != nil || req.Path == "" {
		httpjson.Error(w, http.StatusBadRequest, "path is required")
		return
	}
	meta, err := f.UpdateFileMetadata(r.Context(), req.Path, req.Metadata)
	if err != nil {
		httpjson.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"metadata": meta})
}
