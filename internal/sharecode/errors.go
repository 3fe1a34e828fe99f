package sharecode

import (
	"errors"
	"fmt"
	"time"

	"github.com/zenithbooks/zenithbooks/internal/repository"
)

var (
	// ErrNotFoundOrExpired covers absent, inactive and expired codes alike
	// so callers cannot tell which one they hit.
	ErrNotFoundOrExpired = errors.New("share code not found or expired")

	// ErrCollision means one secret verified against more than one code.
	// The owner has to reissue.
	ErrCollision = errors.New("share code collision")

	ErrInvalidSecret = errors.New("share code must be alphanumeric and long enough")
	ErrNoCategories  = errors.New("at least one category is required")
	ErrNameRequired  = errors.New("code name is required")
	ErrSecretInUse   = errors.New("share code already in use")

	// ErrDocumentNotFound is returned when a document is outside a grant.
	ErrDocumentNotFound = errors.New("document not found")

	ErrNotFound  = repository.ErrNotFound
	ErrForbidden = repository.ErrForbidden
)

// RateLimitedError is returned while a caller is locked out after too many
// failed attempts.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("too many failed attempts, retry in %s", e.RetryAfter.Round(time.Second))
}
