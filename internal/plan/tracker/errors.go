package tracker

import "errors"

// Sentinel errors classified out of gh CLI/GraphQL failures. classifyError
// wraps these into ppErrors.ProviderError so callers can still errors.Is
// against the underlying cause.
var (
	// ErrProviderUnavailable indicates gh is not installed or not on PATH.
	ErrProviderUnavailable = errors.New("gh CLI is not installed or not in PATH")

	// ErrAuthRequired indicates gh requires authentication.
	ErrAuthRequired = errors.New("gh CLI requires authentication (run 'gh auth login')")

	// ErrItemNotFound indicates the requested issue does not exist.
	ErrItemNotFound = errors.New("issue not found")

	// ErrRateLimited indicates GitHub rate-limited the request.
	ErrRateLimited = errors.New("rate limited by GitHub")

	// ErrRepoNotFound indicates the configured target repository could
	// not be resolved.
	ErrRepoNotFound = errors.New("repository not found or not accessible")
)
