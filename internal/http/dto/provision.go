// Package dto contains the request/response shapes of the HTTP API.
package dto

import "github.com/plantit/plantit/internal/domain/types"

// ProvisionRequest is the POST /v1/provision body. AvatarB64 carries
// the avatar image bytes base64-encoded; required in create_account
// mode.
type ProvisionRequest struct {
	Mode      string `json:"mode"` // "login" | "create_account"
	Email     string `json:"email"`
	Password  string `json:"password"`
	AvatarB64 string `json:"avatar,omitempty"`
}

// OutcomeEvent is one line of the NDJSON provision stream.
type OutcomeEvent struct {
	Success bool   `json:"success"`
	Stage   string `json:"stage"`
	Message string `json:"message"`
	Final   bool   `json:"final"`
}

// FromOutcome maps a workflow outcome onto the wire shape.
func FromOutcome(out types.WorkflowOutcome, final bool) OutcomeEvent {
	return OutcomeEvent{
		Success: out.Success,
		Stage:   string(out.Stage),
		Message: out.Message,
		Final:   final,
	}
}

// ProfileResponse is the GET /v1/profiles/{userID} body.
type ProfileResponse struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// GuideListResponse is the GET /v1/guides body.
type GuideListResponse struct {
	Plants []string `json:"plants"`
}

// GuideStatesResponse is the GET /v1/guides/{plant} body.
type GuideStatesResponse struct {
	Plant     string            `json:"plant"`
	States    []string          `json:"states"`
	Documents map[string]string `json:"documents"` // state -> document name
}
