package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/plantit/plantit/internal/catalog"
	"github.com/plantit/plantit/internal/http/dto"
	httperrors "github.com/plantit/plantit/internal/http/errors"
)

// GuidesController serves the static cultivation-guide catalog.
type GuidesController struct {
	catalog *catalog.Catalog
}

// NewGuidesController creates a new guides controller.
func NewGuidesController(c *catalog.Catalog) *GuidesController {
	return &GuidesController{catalog: c}
}

// List returns all plants with published guides.
func (c *GuidesController) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(dto.GuideListResponse{Plants: c.catalog.Plants()})
}

// States returns the states and guide documents for one plant.
func (c *GuidesController) States(w http.ResponseWriter, r *http.Request) {
	plant := chi.URLParam(r, "plant")

	states, err := c.catalog.States(plant)
	if err != nil {
		if errors.Is(err, catalog.ErrUnknownPlant) {
			httperrors.WriteError(w, httperrors.ErrNotFound.WithDetail("unknown plant"))
			return
		}
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
		return
	}

	docs := make(map[string]string, len(states))
	for _, state := range states {
		if doc, err := c.catalog.DocumentName(plant, state); err == nil {
			docs[state] = doc
		}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(dto.GuideStatesResponse{
		Plant:     plant,
		States:    states,
		Documents: docs,
	})
}
