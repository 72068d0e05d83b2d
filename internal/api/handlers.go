package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/baxromumarov/recipe-hunter/internal/core"
	"github.com/baxromumarov/recipe-hunter/internal/store"
	"github.com/baxromumarov/recipe-hunter/internal/urlutil"
)

const maxRequestBody = 1 << 20

type AddRecipeRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleAddRecipe(w http.ResponseWriter, r *http.Request) {
	var req AddRecipeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.URL == "" {
		respondError(w, http.StatusBadRequest, "URL is required")
		return
	}

	entry, err := s.kitchen.Import(r.Context(), req.URL)
	switch {
	case err == nil:
		respondJSON(w, http.StatusCreated, entry)
	case errors.Is(err, urlutil.ErrUnsupportedURL):
		respondError(w, http.StatusBadRequest, "Invalid recipe URL")
	case errors.Is(err, core.ErrStore):
		slog.Error("failed to save recipe", "url", req.URL, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to save recipe")
	default:
		respondError(w, http.StatusBadRequest, "Failed to extract recipe")
	}
}

func (s *Server) handleListRecipes(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r, 20)

	entries, total, err := s.kitchen.Book().List(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch recipes: "+err.Error())
		return
	}
	if entries == nil {
		entries = []store.Entry{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items":  entries,
		"limit":  limit,
		"offset": offset,
		"total":  total,
	})
}

func (s *Server) handleGetRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid recipe ID")
		return
	}

	entry, err := s.kitchen.Book().Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Recipe not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch recipe: "+err.Error())
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

func parsePagination(r *http.Request, defaultLimit int) (int, int) {
	q := r.URL.Query()
	limit := defaultLimit
	offset := 0

	if v := q.Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}

	if v := q.Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}

	if limit <= 0 {
		limit = defaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
