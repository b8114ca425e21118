// Package provision contains the provisioning orchestrator: the state
// machine that drives the identity, blob and profile adapters in order
// for one request, reports per-stage outcomes, and invokes the
// completion hook exactly once on overall success.
//
// Transitions are strictly forward. A failed stage terminates the run;
// there is no retry and no rollback. A create-account run that fails
// after the account exists leaves the identity record without a
// profile record; this inconsistency is reported, never hidden.
package provision

import (
	"context"

	"github.com/plantit/plantit/internal/domain/types"
)

// State is the orchestrator's position in the workflow.
type State string

const (
	StateIdle           State = "idle"
	StateValidating     State = "validating"
	StateAuthenticating State = "authenticating"
	StateUploading      State = "uploading"
	StateResolvingURL   State = "resolving_url"
	StatePersisting     State = "persisting"
	StateCompleted      State = "completed"
	StateFailed         State = "failed"
)

// Hook is the completion notification invoked exactly once when a run
// reaches Completed. The surrounding application owns what happens
// next; errors there never affect the finished run.
type Hook func(ctx context.Context, id types.UserIdentity)

// Emitter receives one WorkflowOutcome per stage entered, in stage
// order. The final outcome is also returned from Provision.
type Emitter func(types.WorkflowOutcome)

// Service runs provisioning workflows.
type Service interface {
	// Provision executes one workflow run. Each stage entered emits
	// exactly one outcome via emit (which may be nil); the terminal
	// outcome is returned. The caller always gets a final status.
	Provision(ctx context.Context, req types.ProvisioningRequest, emit Emitter) types.WorkflowOutcome
}
