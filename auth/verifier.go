package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SigningMethod is the only accepted token algorithm.
const SigningMethod = "HS256"

// ErrEmptySecret is returned when a verifier is built without a secret
var ErrEmptySecret = errors.New("shared secret must not be empty")

// Clock returns the current time. Verification never reads the system clock itself.
type Clock func() time.Time

// Verifier validates bearer tokens signed with a shared HMAC secret.
// A Verifier is immutable once built and safe for concurrent use.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a verifier bound to a copy of secret
func NewVerifier(secret []byte) (*Verifier, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	key := make([]byte, len(secret))
	copy(key, secret)
	return &Verifier{secret: key}, nil
}

// Verify checks the token signature, then expiry, then the subject claim,
// and returns the claim set on success. Every failure is a *VerificationError.
func (v *Verifier) Verify(tokenString string, now time.Time) (*ClaimSet, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{SigningMethod}),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	// golang-jwt verifies the signature before running any claim validation
	token, err := parser.ParseWithClaims(tokenString, jwt.MapClaims{}, v.keyFunc)
	if err != nil {
		return nil, classifyParseError(err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, newVerificationError(FailureMalformed, errors.New("unexpected claims type"))
	}

	subject, err := subjectClaim(claims)
	if err != nil {
		return nil, err
	}

	parsed := &ClaimSet{Subject: subject}
	if iat, err := claims.GetIssuedAt(); err != nil {
		return nil, newVerificationError(FailureMalformed, err)
	} else if iat != nil {
		parsed.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err != nil {
		return nil, newVerificationError(FailureMalformed, err)
	} else if exp != nil {
		parsed.ExpiresAt = exp.Time
	}

	// Re-read the payload so pass-through claims keep their original encoding
	segments := strings.Split(tokenString, ".")
	payload, err := parser.DecodeSegment(segments[1])
	if err != nil {
		return nil, newVerificationError(FailureMalformed, err)
	}
	extra, err := extraClaims(payload)
	if err != nil {
		return nil, newVerificationError(FailureMalformed, err)
	}
	parsed.Extra = extra

	return parsed, nil
}

func (v *Verifier) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return v.secret, nil
}

// classifyParseError maps golang-jwt errors onto the closed failure set.
// Expiry is only reported once the signature has been accepted.
func classifyParseError(err error) *VerificationError {
	if errors.Is(err, jwt.ErrTokenExpired) && !errors.Is(err, jwt.ErrTokenSignatureInvalid) {
		return newVerificationError(FailureExpired, err)
	}
	return newVerificationError(FailureMalformed, err)
}

func subjectClaim(claims jwt.MapClaims) (string, error) {
	raw, ok := claims[ClaimSubject]
	if !ok || raw == nil {
		return "", newVerificationError(FailureMissingSubject, nil)
	}
	subject, ok := raw.(string)
	if !ok {
		return "", newVerificationError(FailureMalformed, fmt.Errorf("%s claim is %T, not a string", ClaimSubject, raw))
	}
	if subject == "" {
		return "", newVerificationError(FailureMissingSubject, nil)
	}
	return subject, nil
}
