// Package controllers contains the HTTP controllers of the API.
// Controllers stay thin: decode, delegate, encode.
package controllers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/plantit/plantit/internal/domain/types"
	"github.com/plantit/plantit/internal/http/dto"
	httperrors "github.com/plantit/plantit/internal/http/errors"
	"github.com/plantit/plantit/internal/observability/logger"
	"github.com/plantit/plantit/internal/provision"
)

// ProvisionController handles POST /v1/provision.
type ProvisionController struct {
	service provision.Service
}

// NewProvisionController creates a new provision controller.
func NewProvisionController(service provision.Service) *ProvisionController {
	return &ProvisionController{service: service}
}

// Provision runs one provisioning workflow and streams stage outcomes
// as NDJSON, terminal outcome last with final=true. The stream always
// ends with a final status; transport errors aside, the caller is
// never left without one.
func (c *ProvisionController) Provision(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("ProvisionController.Provision"))

	var in dto.ProvisionRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("malformed json body"))
		return
	}

	var avatar []byte
	if in.AvatarB64 != "" {
		var err error
		avatar, err = base64.StdEncoding.DecodeString(in.AvatarB64)
		if err != nil {
			httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("avatar is not valid base64"))
			return
		}
	}

	req := types.ProvisioningRequest{
		Mode:        types.Mode(in.Mode),
		Email:       in.Email,
		Password:    in.Password,
		AvatarBytes: avatar,
	}

	w.Header().Set("Content-Type", "application/x-ndjson; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)

	var pending *types.WorkflowOutcome
	final := c.service.Provision(ctx, req, func(out types.WorkflowOutcome) {
		// hold each outcome until we know whether a later one follows,
		// so the last line can carry final=true
		if pending != nil {
			_ = enc.Encode(dto.FromOutcome(*pending, false))
			if flusher != nil {
				flusher.Flush()
			}
		}
		pending = &out
	})

	_ = enc.Encode(dto.FromOutcome(final, true))
	if flusher != nil {
		flusher.Flush()
	}

	log.Debug("provision run finished",
		logger.Mode(req.Mode),
		logger.Stage(final.Stage),
		logger.Any("success", final.Success),
	)
}
