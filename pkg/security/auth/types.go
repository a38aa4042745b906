package auth

import "errors"

// KeyInfo identifies an authenticated caller. Only the operator-assigned
// key name travels past the gate; the secret itself never enters the
// request context, logs, or metrics.
type KeyInfo struct {
	// Name is the configured label for the key.
	Name string
}

// Validation errors. Both answer HTTP 401 at the gate; the distinction
// exists for logs only.
var (
	// ErrInvalidKey means no configured key matched.
	ErrInvalidKey = errors.New("invalid API key")

	// ErrKeyDisabled means the key matched but is out of rotation.
	ErrKeyDisabled = errors.New("API key disabled")
)

// KeyValidator validates API key secrets. Implemented by APIKeyValidator.
type KeyValidator interface {
	Validate(key string) (*KeyInfo, error)
}
