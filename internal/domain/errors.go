package domain

import "fmt"

// ValidationError rejects a write before it reaches the store: an
// unregistered kind or label key, a malformed id, a reserved slug, or a
// degenerate query. A validation failure never produces a store version.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// TokenBudgetError reports text exceeding the active model's token limit.
// Text is never silently truncated; the caller must shorten the input or
// switch to a larger-context model.
type TokenBudgetError struct {
	Field  string
	Tokens int
	Limit  int
	Model  string
}

func (e *TokenBudgetError) Error() string {
	return fmt.Sprintf("%s exceeds token budget: %d tokens, limit %d for model %s",
		e.Field, e.Tokens, e.Limit, e.Model)
}

// NotFoundError reports an unknown artifact id, version, or registry slug.
type NotFoundError struct {
	Resource string // "artifact", "version", "kind", "label"
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

// ProviderError wraps an embedding provider failure: network error,
// malformed response, or a missing/invalid API key. Providers never retry
// internally; the caller decides whether a retry is appropriate.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// StorageError wraps a store-level failure. A failed mutation leaves the
// prior version as HEAD.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// CorruptionError reports a broken manifest chain detected on open. It is
// fatal to the process: corruption is reported, never auto-repaired.
type CorruptionError struct {
	Detail string
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("store corrupted: %s", e.Detail)
}
