package provision

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/plantit/plantit/internal/domain/types"
)

// fakes recording every adapter call, in the order the workflow makes
// them.

type fakeIdentity struct {
	signIns  int
	creates  int
	signInFn func(email, password string) (*types.UserIdentity, error)
	createFn func(email, password string) (*types.UserIdentity, error)
}

func (f *fakeIdentity) SignIn(ctx context.Context, email, password string) (*types.UserIdentity, error) {
	f.signIns++
	if f.signInFn == nil {
		return &types.UserIdentity{UserID: "u1", Email: email}, nil
	}
	return f.signInFn(email, password)
}

func (f *fakeIdentity) CreateAccount(ctx context.Context, email, password string) (*types.UserIdentity, error) {
	f.creates++
	if f.createFn == nil {
		return &types.UserIdentity{UserID: "u1", Email: email}, nil
	}
	return f.createFn(email, password)
}

type fakeBlobs struct {
	uploads   int
	resolves  int
	uploadFn  func(owner string, data []byte) (types.BlobRef, error)
	resolveFn func(ref types.BlobRef) (string, error)
}

func (f *fakeBlobs) Upload(ctx context.Context, owner string, data []byte) (types.BlobRef, error) {
	f.uploads++
	if f.uploadFn == nil {
		return types.BlobRef(owner), nil
	}
	return f.uploadFn(owner, data)
}

func (f *fakeBlobs) ResolveURL(ctx context.Context, ref types.BlobRef) (string, error) {
	f.resolves++
	if f.resolveFn == nil {
		return "https://store/" + string(ref) + ".jpg", nil
	}
	return f.resolveFn(ref)
}

type fakeProfiles struct {
	records map[string]types.ProfileRecord
	writes  int
	err     error
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{records: make(map[string]types.ProfileRecord)}
}

func (f *fakeProfiles) Upsert(ctx context.Context, rec types.ProfileRecord) error {
	f.writes++
	if f.err != nil {
		return f.err
	}
	f.records[rec.UserID] = rec
	return nil
}

func (f *fakeProfiles) Get(ctx context.Context, userID string) (*types.ProfileRecord, error) {
	rec, ok := f.records[userID]
	if !ok {
		return nil, types.NewPersistError(types.PersistUnknown, "not found", nil)
	}
	return &rec, nil
}

type env struct {
	identity *fakeIdentity
	blobs    *fakeBlobs
	profiles *fakeProfiles
	hooks    int
	svc      Service
	outcomes []types.WorkflowOutcome
}

func newEnv() *env {
	e := &env{
		identity: &fakeIdentity{},
		blobs:    &fakeBlobs{},
		profiles: newFakeProfiles(),
	}
	e.svc = New(Deps{
		Identity: e.identity,
		Blobs:    e.blobs,
		Profiles: e.profiles,
		OnComplete: func(ctx context.Context, id types.UserIdentity) {
			e.hooks++
		},
	})
	return e
}

func (e *env) provision(ctx context.Context, req types.ProvisioningRequest) types.WorkflowOutcome {
	e.outcomes = nil
	return e.svc.Provision(ctx, req, func(out types.WorkflowOutcome) {
		e.outcomes = append(e.outcomes, out)
	})
}

func (e *env) remoteCalls() int {
	return e.identity.signIns + e.identity.creates + e.blobs.uploads + e.blobs.resolves + e.profiles.writes
}

var stageSequence = []types.Stage{
	types.StageValidate,
	types.StageAuthenticate,
	types.StageUpload,
	types.StageResolveURL,
	types.StagePersistProfile,
}

// requireStagePrefix asserts the entered stages form a strict prefix
// of the canonical order with no stage entered twice.
func requireStagePrefix(t *testing.T, outcomes []types.WorkflowOutcome) {
	t.Helper()
	require.LessOrEqual(t, len(outcomes), len(stageSequence))
	for i, out := range outcomes {
		require.Equal(t, stageSequence[i], out.Stage, "outcome %d out of order", i)
	}
}

func createReq() types.ProvisioningRequest {
	return types.ProvisioningRequest{
		Mode:        types.ModeCreateAccount,
		Email:       "a@x.com",
		Password:    "secret",
		AvatarBytes: make([]byte, 64),
	}
}

func TestProvision_LoginEmptyPassword_NoRemoteCalls(t *testing.T) {
	e := newEnv()
	out := e.provision(context.Background(), types.ProvisioningRequest{
		Mode:  types.ModeLogin,
		Email: "a@x.com",
	})

	require.False(t, out.Success)
	require.Equal(t, types.StageValidate, out.Stage)
	require.Zero(t, e.remoteCalls())
	require.Zero(t, e.hooks)
}

func TestProvision_CreateWithoutAvatar_FailsBeforeRemoteCalls(t *testing.T) {
	e := newEnv()
	req := createReq()
	req.AvatarBytes = nil
	out := e.provision(context.Background(), req)

	require.False(t, out.Success)
	require.Equal(t, types.StageValidate, out.Stage)
	require.Contains(t, out.Message, "avatar")
	require.Zero(t, e.remoteCalls())
}

func TestProvision_LoginInvalidCredentials(t *testing.T) {
	e := newEnv()
	e.identity.signInFn = func(email, password string) (*types.UserIdentity, error) {
		return nil, types.NewAuthError(types.AuthInvalidCredentials, "invalid email or password", nil)
	}

	out := e.provision(context.Background(), types.ProvisioningRequest{
		Mode:     types.ModeLogin,
		Email:    "a@x.com",
		Password: "wrong",
	})

	require.False(t, out.Success)
	require.Equal(t, types.StageAuthenticate, out.Stage)
	require.Contains(t, out.Message, string(types.StageAuthenticate))
	require.Contains(t, out.Message, "invalid")
	require.Zero(t, e.blobs.uploads)
	require.Zero(t, e.profiles.writes)
	require.Zero(t, e.hooks)
}

func TestProvision_LoginSuccess(t *testing.T) {
	e := newEnv()
	out := e.provision(context.Background(), types.ProvisioningRequest{
		Mode:     types.ModeLogin,
		Email:    "a@x.com",
		Password: "secret",
	})

	require.True(t, out.Success)
	require.Equal(t, types.StageAuthenticate, out.Stage)
	require.Equal(t, 1, e.hooks)
	// login never touches blob or profile stores
	require.Zero(t, e.blobs.uploads)
	require.Zero(t, e.blobs.resolves)
	require.Zero(t, e.profiles.writes)
}

func TestProvision_EmptyResolvedURL_NeverPersists(t *testing.T) {
	e := newEnv()
	e.blobs.resolveFn = func(ref types.BlobRef) (string, error) {
		return "", nil
	}

	out := e.provision(context.Background(), createReq())

	require.False(t, out.Success)
	require.Equal(t, types.StageResolveURL, out.Stage)
	require.Zero(t, e.profiles.writes, "no profile with a null avatar is ever persisted")
	require.Zero(t, e.hooks)
	requireStagePrefix(t, e.outcomes)
}

func TestProvision_UploadFails_PartialStateReported(t *testing.T) {
	e := newEnv()
	e.blobs.uploadFn = func(owner string, data []byte) (types.BlobRef, error) {
		return "", types.NewStorageError(types.StorageQuotaExceeded, "storage quota exceeded", nil)
	}

	out := e.provision(context.Background(), createReq())

	require.False(t, out.Success)
	require.Equal(t, types.StageUpload, out.Stage)
	require.Contains(t, out.Message, "quota")
	require.Equal(t, 1, e.identity.creates, "account was created before upload failed")
	require.Zero(t, e.blobs.resolves)
	require.Zero(t, e.profiles.writes)
}

func TestProvision_CreateAccountEndToEnd(t *testing.T) {
	e := newEnv()
	out := e.provision(context.Background(), createReq())

	require.True(t, out.Success)
	require.Equal(t, types.StagePersistProfile, out.Stage)
	require.Equal(t, 1, e.hooks, "completion hook invoked exactly once")

	require.Equal(t, 1, e.identity.creates)
	require.Equal(t, 1, e.blobs.uploads)
	require.Equal(t, 1, e.blobs.resolves)
	require.Equal(t, 1, e.profiles.writes)

	rec := e.profiles.records["u1"]
	require.Equal(t, types.ProfileRecord{
		UserID:    "u1",
		Email:     "a@x.com",
		AvatarURL: "https://store/u1.jpg",
	}, rec)

	requireStagePrefix(t, e.outcomes)
	require.Len(t, e.outcomes, len(stageSequence))
}

func TestProvision_ResolvesTheRefUploadReturned(t *testing.T) {
	e := newEnv()
	// a store may key blobs by content hash or versioned path, not by
	// the owner id; the resolve stage must consume the upload's output
	e.blobs.uploadFn = func(owner string, data []byte) (types.BlobRef, error) {
		return "sha256/abc123", nil
	}
	var resolved types.BlobRef
	e.blobs.resolveFn = func(ref types.BlobRef) (string, error) {
		resolved = ref
		return "https://store/" + string(ref) + ".jpg", nil
	}

	out := e.provision(context.Background(), createReq())

	require.True(t, out.Success)
	require.Equal(t, types.BlobRef("sha256/abc123"), resolved)
	require.Equal(t, "https://store/sha256/abc123.jpg", e.profiles.records["u1"].AvatarURL)
}

func TestProvision_RerunOverwritesProfile(t *testing.T) {
	e := newEnv()

	first := e.provision(context.Background(), createReq())
	require.True(t, first.Success)

	// the store already holds u1; re-running upserts without error
	second := e.provision(context.Background(), createReq())
	require.True(t, second.Success)
	require.Equal(t, first.Stage, second.Stage)
	require.Equal(t, 2, e.profiles.writes)
	require.Len(t, e.profiles.records, 1)
}

func TestProvision_AuthFailureMessageNamesStage(t *testing.T) {
	e := newEnv()
	e.identity.createFn = func(email, password string) (*types.UserIdentity, error) {
		return nil, types.NewAuthError(types.AuthAccountAlreadyExists, "email already registered", nil)
	}

	out := e.provision(context.Background(), createReq())
	require.False(t, out.Success)
	require.True(t, strings.Contains(out.Message, string(types.StageAuthenticate)),
		"message must name the failing stage: %q", out.Message)
}

func TestProvision_CancellationConsultedBetweenStages(t *testing.T) {
	e := newEnv()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := e.provision(ctx, createReq())

	// validation is local and still runs; the workflow halts before
	// the first remote dispatch
	require.False(t, out.Success)
	require.Equal(t, types.StageAuthenticate, out.Stage)
	require.Zero(t, e.remoteCalls())
}

func TestProvision_PersistFailure(t *testing.T) {
	e := newEnv()
	e.profiles.err = types.NewPersistError(types.PersistPermissionDenied, "permission denied", nil)

	out := e.provision(context.Background(), createReq())

	require.False(t, out.Success)
	require.Equal(t, types.StagePersistProfile, out.Stage)
	require.Zero(t, e.hooks)
	requireStagePrefix(t, e.outcomes)
}

func TestStream_DeliversTerminalOutcomeAndCloses(t *testing.T) {
	e := newEnv()

	var got []types.WorkflowOutcome
	for out := range Stream(context.Background(), e.svc, createReq()) {
		got = append(got, out)
	}

	require.NotEmpty(t, got)
	last := got[len(got)-1]
	require.True(t, last.Success)
	require.Equal(t, types.StagePersistProfile, last.Stage)
	requireStagePrefix(t, got)
}
