package search

import (
	"errors"
	"fmt"
)

// EmbedKeyEnv is the environment variable holding the embedding provider
// credential. Its absence is surfaced to clients as a 503 with a
// machine-readable key identifier before any provider call.
const EmbedKeyEnv = "OPENAI_API_KEY"

var (
	// ErrMissingCredential marks a provider credential that was never
	// configured.
	ErrMissingCredential = errors.New("missing provider credential")
	// ErrProviderAuth marks a credential the provider rejected.
	ErrProviderAuth = errors.New("provider rejected credential")
)

// CredentialError reports an absent provider credential.
type CredentialError struct {
	Key string
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("search: %s: %s", ErrMissingCredential, e.Key)
}

func (e *CredentialError) Unwrap() error { return ErrMissingCredential }

// AuthError reports a provider credential rejection. Unlike transient
// provider failures these do not activate the text fallback.
type AuthError struct {
	Provider string
	Key      string
	Err      error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("search: %s: %s (%s): %v", ErrProviderAuth, e.Provider, e.Key, e.Err)
}

func (e *AuthError) Unwrap() error { return ErrProviderAuth }
