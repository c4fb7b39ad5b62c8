package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nikhilbhutani/resumebuilder/internal/generation"
	"github.com/nikhilbhutani/resumebuilder/internal/resume"
)

const maxAnswersBytes = 1 << 20

// answersSchema accepts any non-empty JSON object. profession, when present,
// must be a string because it becomes the stored category.
const answersSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"minProperties": 1,
	"properties": {
		"profession": {"type": "string"}
	}
}`

// ResumeGenerator produces resume text from questionnaire answers.
type ResumeGenerator interface {
	Generate(ctx context.Context, fields map[string]any, lang string) (string, error)
}

type ResumeHandler struct {
	gen    ResumeGenerator
	store  resume.Store
	schema *jsonschema.Schema
}

func NewResumeHandler(gen ResumeGenerator, store resume.Store) *ResumeHandler {
	return &ResumeHandler{
		gen:    gen,
		store:  store,
		schema: jsonschema.MustCompileString("answers.json", answersSchema),
	}
}

// Generate creates a resume from the posted answers and stores it.
func (h *ResumeHandler) Generate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxAnswersBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "request body too large")
		return
	}

	fields, err := h.decodeAnswers(body)
	if err != nil {
		slog.Debug("rejected resume answers", "error", err)
		writeError(w, http.StatusBadRequest, "request body must be a non-empty JSON object")
		return
	}

	lang := r.Header.Get("X-Language-Code")
	if lang == "" {
		lang = "en"
	}

	content, err := h.gen.Generate(r.Context(), fields, lang)
	if err != nil {
		slog.Error("resume generation failed", "lang", lang, "error", err)
		var genErr *generation.GenerationError
		if errors.As(err, &genErr) {
			writeError(w, http.StatusBadGateway, "Failed to generate resume")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to generate resume")
		return
	}

	profession, _ := fields["profession"].(string)
	input, err := json.Marshal(fields)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save resume")
		return
	}

	id, err := h.store.Create(r.Context(), profession, content, input)
	if err != nil {
		slog.Error("store resume", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to save resume")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "resume_id": id})
}

// Get returns a stored resume by id.
func (h *ResumeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusNotFound, "Resume not found")
		return
	}

	res, err := h.store.GetByID(r.Context(), id)
	if errors.Is(err, resume.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Resume not found")
		return
	}
	if err != nil {
		slog.Error("load resume", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load resume")
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *ResumeHandler) decodeAnswers(body []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON body")
	}
	if err := h.schema.Validate(raw); err != nil {
		return nil, err
	}
	return raw.(map[string]any), nil
}
