// Package validation checks provisioning input locally, before any
// remote call is issued. Pure and deterministic: no I/O, no suspension.
package validation

import (
	"strings"

	"github.com/plantit/plantit/internal/domain/types"
)

// ValidatedRequest is a ProvisioningRequest that passed local checks,
// with inputs normalized.
type ValidatedRequest struct {
	types.ProvisioningRequest
}

// Validate checks the request and normalizes its inputs.
//
// Email and password must be non-empty; format enforcement is owned by
// the identity service and deliberately not duplicated here. In
// create-account mode the avatar bytes must be non-empty.
func Validate(req types.ProvisioningRequest) (*ValidatedRequest, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	if !req.Mode.Valid() {
		return nil, &types.ValidationError{Field: "mode", Reason: "unknown mode"}
	}
	if req.Email == "" {
		return nil, &types.ValidationError{Field: "email", Reason: "must not be empty"}
	}
	if req.Password == "" {
		return nil, &types.ValidationError{Field: "password", Reason: "must not be empty"}
	}
	if req.Mode == types.ModeCreateAccount && len(req.AvatarBytes) == 0 {
		return nil, types.ErrMissingAvatar
	}

	return &ValidatedRequest{ProvisioningRequest: req}, nil
}
