package auth

import (
	"crypto/subtle"

	"veristone-hq/clarion/pkg/config"
)

// APIKeyValidator validates presented secrets against the configured key
// set. The set is immutable after construction, matching the configuration
// lifecycle.
//
// Validation compares the presented secret against every configured key in
// constant time, so response timing does not reveal how much of a secret
// matched or whether any key exists.
type APIKeyValidator struct {
	keys []configuredKey
}

// configuredKey pairs a secret with its caller-facing identity.
type configuredKey struct {
	secret   string
	name     string
	disabled bool
}

// NewAPIKeyValidator creates a validator from the auth configuration.
// Key shape (non-empty, minimum length) is enforced by config validation.
func NewAPIKeyValidator(keys []config.APIKeyConfig) *APIKeyValidator {
	configured := make([]configuredKey, 0, len(keys))
	for _, key := range keys {
		configured = append(configured, configuredKey{
			secret:   key.Key,
			name:     key.Name,
			disabled: key.Disabled,
		})
	}

	return &APIKeyValidator{keys: configured}
}

// Validate checks the presented secret and returns the key identity.
// Returns ErrInvalidKey when nothing matches, ErrKeyDisabled when the
// matching key is out of rotation.
func (v *APIKeyValidator) Validate(key string) (*KeyInfo, error) {
	presented := []byte(key)

	// Scan the whole set even after a match so timing stays uniform.
	var matched *configuredKey
	for i := range v.keys {
		candidate := &v.keys[i]
		if subtle.ConstantTimeCompare(presented, []byte(candidate.secret)) == 1 {
			matched = candidate
		}
	}

	if matched == nil {
		return nil, ErrInvalidKey
	}
	if matched.disabled {
		return nil, ErrKeyDisabled
	}

	return &KeyInfo{Name: matched.name}, nil
}

// Names returns the configured key names, disabled keys included. Used by
// configuration inspection; secrets are never listed.
func (v *APIKeyValidator) Names() []string {
	names := make([]string, 0, len(v.keys))
	for _, key := range v.keys {
		names = append(names, key.name)
	}
	return names
}
