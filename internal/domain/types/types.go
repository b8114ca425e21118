// Package types contains the domain model shared across the provisioning
// workflow: requests, identities, assets, profile records and outcomes.
package types

// Mode selects which branch of the provisioning workflow runs.
type Mode string

const (
	ModeLogin         Mode = "login"
	ModeCreateAccount Mode = "create_account"
)

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	return m == ModeLogin || m == ModeCreateAccount
}

// Stage is one discrete step of the provisioning workflow.
// Stages are strictly ordered; a run enters a prefix of them and never
// revisits one.
type Stage string

const (
	StageValidate       Stage = "validate"
	StageAuthenticate   Stage = "authenticate"
	StageUpload         Stage = "upload"
	StageResolveURL     Stage = "resolve_url"
	StagePersistProfile Stage = "persist_profile"
)

// stageOrder defines the canonical forward order of stages.
var stageOrder = map[Stage]int{
	StageValidate:       0,
	StageAuthenticate:   1,
	StageUpload:         2,
	StageResolveURL:     3,
	StagePersistProfile: 4,
}

// Before reports whether s comes strictly before other in workflow order.
func (s Stage) Before(other Stage) bool {
	return stageOrder[s] < stageOrder[other]
}

// ProvisioningRequest is the input to one workflow run.
// AvatarBytes is required when Mode is create_account.
type ProvisioningRequest struct {
	Mode        Mode
	Email       string
	Password    string
	AvatarBytes []byte
}

// UserIdentity is produced by the identity adapter on successful
// sign-in or account creation. It lives for the duration of one run;
// the core never persists it.
type UserIdentity struct {
	UserID string
	Email  string
}

// AvatarAsset tracks the avatar through the upload stages of a
// create-account run. URL stays empty until upload+resolve complete.
type AvatarAsset struct {
	OwnerUserID string
	URL         string
}

// BlobRef identifies an uploaded blob at the store. The store keys
// blobs by owner, so the ref is typically the owner's user ID.
type BlobRef string

// ProfileRecord is the durable artifact of a successful create-account
// run, written exactly once per run, keyed by UserID (upsert).
type ProfileRecord struct {
	UserID    string `yaml:"user_id" json:"userId"`
	Email     string `yaml:"email" json:"email"`
	AvatarURL string `yaml:"avatar_url,omitempty" json:"avatarUrl,omitempty"`
}

// WorkflowOutcome reports the result of one stage. Transient: surfaced
// to the caller, never persisted. For a failed stage Message names the
// stage and the classified error.
type WorkflowOutcome struct {
	Success bool   `json:"success"`
	Stage   Stage  `json:"stage"`
	Message string `json:"message"`
}
