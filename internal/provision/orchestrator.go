package provision

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/plantit/plantit/internal/blob"
	"github.com/plantit/plantit/internal/domain/types"
	"github.com/plantit/plantit/internal/identity"
	"github.com/plantit/plantit/internal/observability/logger"
	"github.com/plantit/plantit/internal/profile"
	"github.com/plantit/plantit/internal/validation"
)

// Deps contains dependencies for the orchestrator.
type Deps struct {
	Identity identity.Client
	Blobs    blob.Store
	Profiles profile.Repository

	// OnComplete is invoked exactly once per successful run. Optional.
	OnComplete Hook

	// CallTimeout bounds each remote call. 0 disables the bound.
	// Expired calls surface as the adapter's Unreachable kind.
	CallTimeout time.Duration
}

type orchestrator struct {
	deps Deps
}

// New creates the provisioning orchestrator.
func New(deps Deps) Service {
	return &orchestrator{deps: deps}
}

// run holds the mutable state of one workflow execution. It is owned
// by a single goroutine for the lifetime of one Provision call;
// nothing is shared across concurrent runs except the external stores.
type run struct {
	o     *orchestrator
	req   types.ProvisioningRequest
	state State
	emit  Emitter
	log   *zap.Logger

	identity *types.UserIdentity
	avatar   types.AvatarAsset
	blobRef  types.BlobRef
}

func (o *orchestrator) Provision(ctx context.Context, req types.ProvisioningRequest, emit Emitter) types.WorkflowOutcome {
	if emit == nil {
		emit = func(types.WorkflowOutcome) {}
	}
	r := &run{
		o:     o,
		req:   req,
		state: StateIdle,
		emit:  emit,
		log: logger.From(ctx).With(
			logger.Layer("service"),
			logger.Component("provision"),
			logger.Mode(req.Mode),
		),
	}
	start := time.Now()
	out := r.execute(ctx)
	observeRun(req.Mode, out, time.Since(start))
	return out
}

func (r *run) execute(ctx context.Context) types.WorkflowOutcome {
	// Stage 1: validate, local only. No remote call happens before
	// this passes.
	r.state = StateValidating
	validated, err := validation.Validate(r.req)
	if err != nil {
		return r.fail(types.StageValidate, err)
	}
	r.req = validated.ProvisioningRequest
	r.ok(types.StageValidate, "request validated")

	// Stage 2: authenticate, branch on mode.
	if out, halted := r.authenticate(ctx); halted {
		return out
	}

	if r.req.Mode == types.ModeLogin {
		// Login runs end at the identity. The caller decides what
		// "logged in" means downstream.
		return r.complete(ctx, types.StageAuthenticate,
			fmt.Sprintf("logged in as user %s", r.identity.UserID))
	}

	// Stages 3-4: avatar upload and URL resolution (create only).
	if out, halted := r.uploadAvatar(ctx); halted {
		return out
	}
	if out, halted := r.resolveAvatarURL(ctx); halted {
		return out
	}

	// Stage 5: persist the profile record.
	if out, halted := r.persistProfile(ctx); halted {
		return out
	}

	return r.complete(ctx, types.StagePersistProfile,
		fmt.Sprintf("account provisioned for user %s", r.identity.UserID))
}

func (r *run) authenticate(ctx context.Context) (types.WorkflowOutcome, bool) {
	if err := r.interrupted(ctx); err != nil {
		return r.fail(types.StageAuthenticate, err), true
	}
	r.state = StateAuthenticating

	callCtx, cancel := r.callContext(ctx)
	defer cancel()

	var (
		id  *types.UserIdentity
		err error
	)
	if r.req.Mode == types.ModeLogin {
		id, err = r.o.deps.Identity.SignIn(callCtx, r.req.Email, r.req.Password)
	} else {
		id, err = r.o.deps.Identity.CreateAccount(callCtx, r.req.Email, r.req.Password)
	}
	if err != nil {
		return r.fail(types.StageAuthenticate, err), true
	}

	r.identity = id
	r.log = r.log.With(logger.UserID(id.UserID))
	if r.req.Mode == types.ModeLogin {
		// outcome for this stage is the terminal Completed one
		return types.WorkflowOutcome{}, false
	}
	r.ok(types.StageAuthenticate, fmt.Sprintf("account created for user %s", id.UserID))
	return types.WorkflowOutcome{}, false
}

func (r *run) uploadAvatar(ctx context.Context) (types.WorkflowOutcome, bool) {
	if err := r.interrupted(ctx); err != nil {
		// the account already exists at the identity service; this is
		// the documented partial state, reported and not rolled back
		r.logPartialState(types.StageUpload)
		return r.fail(types.StageUpload, err), true
	}
	r.state = StateUploading
	r.avatar = types.AvatarAsset{OwnerUserID: r.identity.UserID}

	callCtx, cancel := r.callContext(ctx)
	defer cancel()

	ref, err := r.o.deps.Blobs.Upload(callCtx, r.identity.UserID, r.req.AvatarBytes)
	if err != nil {
		r.logPartialState(types.StageUpload)
		return r.fail(types.StageUpload, err), true
	}
	r.blobRef = ref
	r.avatar.URL = "" // absent until resolve completes
	r.ok(types.StageUpload, fmt.Sprintf("avatar stored as %s", ref))
	return types.WorkflowOutcome{}, false
}

func (r *run) resolveAvatarURL(ctx context.Context) (types.WorkflowOutcome, bool) {
	if err := r.interrupted(ctx); err != nil {
		r.logPartialState(types.StageResolveURL)
		return r.fail(types.StageResolveURL, err), true
	}
	r.state = StateResolvingURL

	callCtx, cancel := r.callContext(ctx)
	defer cancel()

	// resolve exactly the ref the upload stage produced
	url, err := r.o.deps.Blobs.ResolveURL(callCtx, r.blobRef)
	if err != nil {
		r.logPartialState(types.StageResolveURL)
		return r.fail(types.StageResolveURL, err), true
	}
	if url == "" {
		// never persist a profile with a known-invalid avatar reference
		r.logPartialState(types.StageResolveURL)
		return r.fail(types.StageResolveURL,
			types.NewStorageError(types.StorageUnknown, "resolved an empty avatar url", nil)), true
	}

	r.avatar.URL = url
	r.ok(types.StageResolveURL, "avatar url resolved")
	return types.WorkflowOutcome{}, false
}

func (r *run) persistProfile(ctx context.Context) (types.WorkflowOutcome, bool) {
	if err := r.interrupted(ctx); err != nil {
		r.logPartialState(types.StagePersistProfile)
		return r.fail(types.StagePersistProfile, err), true
	}
	r.state = StatePersisting

	callCtx, cancel := r.callContext(ctx)
	defer cancel()

	rec := types.ProfileRecord{
		UserID:    r.identity.UserID,
		Email:     r.identity.Email,
		AvatarURL: r.avatar.URL,
	}
	if err := r.o.deps.Profiles.Upsert(callCtx, rec); err != nil {
		r.logPartialState(types.StagePersistProfile)
		return r.fail(types.StagePersistProfile, err), true
	}
	return types.WorkflowOutcome{}, false
}

// complete transitions to Completed, emits the terminal outcome and
// invokes the completion hook exactly once.
func (r *run) complete(ctx context.Context, stage types.Stage, msg string) types.WorkflowOutcome {
	r.state = StateCompleted
	out := types.WorkflowOutcome{Success: true, Stage: stage, Message: msg}
	r.emit(out)
	r.log.Info("provisioning completed", logger.Stage(stage))

	if r.o.deps.OnComplete != nil {
		r.o.deps.OnComplete(ctx, *r.identity)
	}
	return out
}

// fail transitions to Failed(stage) and emits the terminal outcome.
// The message names the failing stage; it is the caller's single
// source of truth for what went wrong.
func (r *run) fail(stage types.Stage, err error) types.WorkflowOutcome {
	r.state = StateFailed
	out := types.WorkflowOutcome{
		Success: false,
		Stage:   stage,
		Message: fmt.Sprintf("stage %s failed: %v", stage, err),
	}
	r.emit(out)
	r.log.Warn("provisioning failed", logger.Stage(stage), logger.Err(err))
	return out
}

// ok emits the success outcome for a non-terminal stage.
func (r *run) ok(stage types.Stage, msg string) {
	r.emit(types.WorkflowOutcome{Success: true, Stage: stage, Message: msg})
	r.log.Debug("stage completed", logger.Stage(stage))
}

// interrupted reports caller cancellation. It is consulted only
// between stages: a call already dispatched always runs to its
// response.
func (r *run) interrupted(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("workflow canceled before stage dispatch: %w", err)
	}
	return nil
}

// callContext bounds one remote call with the configured timeout.
func (r *run) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.o.deps.CallTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.o.deps.CallTimeout)
}

// logPartialState records the accepted inconsistency of a create run
// failing after the identity record exists.
func (r *run) logPartialState(stage types.Stage) {
	if r.identity == nil {
		return
	}
	r.log.Warn("account exists without profile record",
		logger.Stage(stage),
		logger.UserID(r.identity.UserID),
	)
}
