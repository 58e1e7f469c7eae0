package session

import "context"

// Store is the single source of truth for the active credential and the
// identity resolved from it. All mutations converge through the same path:
// login, boot-time restore, and logout are all credential changes followed by
// an identity reload.
type Store interface {
	// Init restores a persisted credential and resolves its identity.
	// Called once at process start.
	Init(ctx context.Context) error

	// SetCredential overwrites the credential, mirrors it to durable
	// storage, notifies subscribers, and reloads the identity. Setting the
	// value already held is a no-op.
	SetCredential(ctx context.Context, token string) error

	// LoadIdentity resolves the identity for the current credential. An
	// empty credential yields the anonymous identity. A fetch rejected by
	// the backend clears the session.
	LoadIdentity(ctx context.Context) error

	// Logout clears the identity and the credential from memory and
	// durable storage. Idempotent.
	Logout(ctx context.Context) error

	// Credential returns the current bearer token, or empty.
	Credential() string

	// Identity returns the current identity. Only trustworthy once
	// Loading reports false.
	Identity() Identity

	// Loading reports whether an identity fetch is outstanding.
	Loading() bool

	// Subscribe registers a callback invoked on every credential change
	// with the new value. Returns an unsubscribe function. Callbacks run
	// synchronously in subscription order.
	Subscribe(fn func(credential string)) func()
}

// IdentityClient fetches the profile for a credential from the backend.
type IdentityClient interface {
	// FetchIdentity resolves the identity behind token. Returns
	// ErrUnauthorized when the backend rejects the credential.
	FetchIdentity(ctx context.Context, token string) (Identity, error)
}
