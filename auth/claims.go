package auth

import (
	"encoding/json"
	"time"
)

// Registered claim names that are lifted out of the payload into typed fields.
const (
	ClaimSubject   = "sub"
	ClaimIssuedAt  = "iat"
	ClaimExpiresAt = "exp"
)

// ClaimSet is the validated output of a successful verification.
// It is built only by Verifier.Verify and is not modified afterwards.
type ClaimSet struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time

	// Extra holds every other claim exactly as it appeared in the token payload.
	Extra map[string]json.RawMessage
}

// ExtraClaim decodes a pass-through claim into dst.
// It reports false when the claim is not present.
func (c *ClaimSet) ExtraClaim(name string, dst interface{}) (bool, error) {
	raw, ok := c.Extra[name]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return true, err
	}
	return true, nil
}

// extraClaims splits the raw payload into the claims not lifted into typed fields.
func extraClaims(payload []byte) (map[string]json.RawMessage, error) {
	raw := make(map[string]json.RawMessage)
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, err
	}
	delete(raw, ClaimSubject)
	delete(raw, ClaimIssuedAt)
	delete(raw, ClaimExpiresAt)
	return raw, nil
}
