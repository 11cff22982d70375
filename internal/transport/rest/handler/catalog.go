package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"catalogfinder/internal/service"
	"catalogfinder/internal/transport/rest/middleware"
	"catalogfinder/internal/tree"

	"github.com/gorilla/mux"
)

// CatalogHandler handles catalog and tree endpoints
type CatalogHandler struct {
	catalogSvc *service.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogSvc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogSvc: catalogSvc}
}

// CreateCatalogRequest is the request body for uploading a catalog. Rows are
// already tokenized; CSV parsing happens upstream.
type CreateCatalogRequest struct {
	Name        string     `json:"name"`
	Headers     []string   `json:"headers"`
	Rows        [][]string `json:"rows"`
	MaxDepth    int        `json:"maxDepth,omitempty"`
	MinLeafSize int        `json:"minLeafSize,omitempty"`
}

// RebuildRequest is the request body for rebuilding a catalog's tree
type RebuildRequest struct {
	MaxDepth    int `json:"maxDepth,omitempty"`
	MinLeafSize int `json:"minLeafSize,omitempty"`
}

// Create handles POST /v1/catalogs
func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	merchantID := middleware.GetMerchantID(r.Context())
	if merchantID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateCatalogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	opts := tree.Options{MaxDepth: req.MaxDepth, MinLeafSize: req.MinLeafSize}
	catalog, snapshot, err := h.catalogSvc.Create(r.Context(), merchantID, req.Name, req.Headers, req.Rows, opts)
	if err != nil {
		writeError(w, buildErrorStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"catalogId": catalog.ID,
		"treeId":    snapshot.ID,
		"metrics":   snapshot.Metrics,
	})
}

// List handles GET /v1/catalogs
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	merchantID := middleware.GetMerchantID(r.Context())
	if merchantID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	catalogs, err := h.catalogSvc.GetByMerchantID(r.Context(), merchantID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"catalogs": catalogs})
}

// Get handles GET /v1/catalogs/{catalogId}
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	catalogID := mux.Vars(r)["catalogId"]

	catalog, err := h.catalogSvc.GetByID(r.Context(), catalogID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if catalog == nil {
		writeError(w, http.StatusNotFound, "catalog not found")
		return
	}

	writeJSON(w, http.StatusOK, catalog)
}

// Rebuild handles POST /v1/catalogs/{catalogId}/rebuild
func (h *CatalogHandler) Rebuild(w http.ResponseWriter, r *http.Request) {
	catalogID := mux.Vars(r)["catalogId"]

	var req RebuildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	opts := tree.Options{MaxDepth: req.MaxDepth, MinLeafSize: req.MinLeafSize}
	snapshot, err := h.catalogSvc.Rebuild(r.Context(), catalogID, opts)
	if err != nil {
		if errors.Is(err, service.ErrCatalogNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, buildErrorStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"treeId":  snapshot.ID,
		"metrics": snapshot.Metrics,
	})
}

// GetTree handles GET /v1/catalogs/{catalogId}/tree
func (h *CatalogHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	catalogID := mux.Vars(r)["catalogId"]

	snapshot, err := h.catalogSvc.GetLatestTree(r.Context(), catalogID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if snapshot == nil {
		writeError(w, http.StatusNotFound, "no tree for catalog")
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

// buildErrorStatus maps core build failures to 422, everything else to 500.
func buildErrorStatus(err error) int {
	if errors.Is(err, tree.ErrEmptyInput) || errors.Is(err, tree.ErrNoFeatures) || errors.Is(err, tree.ErrDimensionMismatch) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
