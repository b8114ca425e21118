package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/plantit/plantit/internal/http/dto"
	httperrors "github.com/plantit/plantit/internal/http/errors"
	"github.com/plantit/plantit/internal/observability/logger"
	"github.com/plantit/plantit/internal/profile"
)

// ProfileController handles GET /v1/profiles/{userID}.
type ProfileController struct {
	profiles profile.Repository
}

// NewProfileController creates a new profile controller.
func NewProfileController(profiles profile.Repository) *ProfileController {
	return &ProfileController{profiles: profiles}
}

// Get returns the persisted profile for a user.
func (c *ProfileController) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("ProfileController.Get"))

	userID := chi.URLParam(r, "userID")
	if userID == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("missing user id"))
		return
	}

	rec, err := c.profiles.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			httperrors.WriteError(w, httperrors.ErrNotFound)
			return
		}
		log.Error("profile read failed", logger.UserID(userID), logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(dto.ProfileResponse{
		UserID:    rec.UserID,
		Email:     rec.Email,
		AvatarURL: rec.AvatarURL,
	})
}
