package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nikhilbhutani/resumebuilder/internal/assets"
)

// AssetReader returns the JSON bundle for a key, falling back to the kind's default.
type AssetReader interface {
	Read(kind assets.Kind, key string) ([]byte, error)
}

type AssetHandler struct {
	assets AssetReader
}

func NewAssetHandler(r AssetReader) *AssetHandler {
	return &AssetHandler{assets: r}
}

func (h *AssetHandler) Translation(w http.ResponseWriter, r *http.Request) {
	h.serve(w, assets.KindTranslation, chi.URLParam(r, "langCode"))
}

func (h *AssetHandler) Questions(w http.ResponseWriter, r *http.Request) {
	h.serve(w, assets.KindQuestionSet, chi.URLParam(r, "professionKey"))
}

func (h *AssetHandler) serve(w http.ResponseWriter, kind assets.Kind, key string) {
	data, err := h.assets.Read(kind, key)
	if errors.Is(err, assets.ErrAssetNotFound) {
		writeError(w, http.StatusNotFound, "asset not found")
		return
	}
	if err != nil {
		slog.Error("read asset", "kind", kind, "key", key, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read asset")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
