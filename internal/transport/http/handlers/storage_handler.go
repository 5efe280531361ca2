package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/vedran77/huddle/internal/objectstore"
	"github.com/vedran77/huddle/internal/service"
)

// MaxUploadSize caps the body of a single upload.
const MaxUploadSize = 10 << 20

type StorageHandler struct {
	storageService *service.StorageService
	log            *logrus.Entry
}

func NewStorageHandler(storageService *service.StorageService, log *logrus.Entry) *StorageHandler {
	return &StorageHandler{storageService: storageService, log: log}
}

// Upload stores the raw request body under {bucket}/{name...}.
func (h *StorageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > MaxUploadSize {
		writeError(w, http.StatusRequestEntityTooLarge, "TOO_LARGE", "File is too large")
		return
	}
	body := http.MaxBytesReader(w, r.Body, MaxUploadSize)

	url, err := h.storageService.Upload(r.Context(), r.PathValue("bucket"), r.PathValue("name"), body, r.ContentLength, r.Header.Get("Content-Type"))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "TOO_LARGE", "File is too large")
			return
		}
		h.writeServiceError(w, "upload", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}

func (h *StorageHandler) Remove(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Names []string `json:"names"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if len(input.Names) == 0 {
		writeError(w, http.StatusBadRequest, "MISSING_NAMES", "names is required")
		return
	}

	if err := h.storageService.Remove(r.Context(), r.PathValue("bucket"), input.Names); err != nil {
		h.writeServiceError(w, "remove", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Public streams a stored object without authentication.
func (h *StorageHandler) Public(w http.ResponseWriter, r *http.Request) {
	obj, info, err := h.storageService.Open(r.Context(), r.PathValue("bucket"), r.PathValue("name"))
	if err != nil {
		h.writeServiceError(w, "download", err)
		return
	}
	defer obj.Close()

	if info.ContentType != "" {
		w.Header().Set("Content-Type", info.ContentType)
	}
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, obj); err != nil {
		h.log.WithError(err).Warn("streaming object failed")
	}
}

func (h *StorageHandler) writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidObjectName):
		writeError(w, http.StatusBadRequest, "INVALID_NAME", "Invalid object name")
	case errors.Is(err, objectstore.ErrUnknownBucket):
		writeError(w, http.StatusNotFound, "BUCKET_NOT_FOUND", "Bucket not found")
	case errors.Is(err, objectstore.ErrObjectNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Object not found")
	case errors.Is(err, objectstore.ErrObjectExists):
		writeError(w, http.StatusConflict, "OBJECT_EXISTS", "An object with that name already exists")
	default:
		internalError(w, h.log, op, err)
	}
}
