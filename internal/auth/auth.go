package auth

import "github.com/golang-jwt/jwt/v5"

// Authenticator validates the bearer tokens minted by the marketplace's
// identity service. The feedback pipeline only consumes the role and club
// claims; it never manages sessions itself.
type Authenticator interface {
	GenerateToken(subjectID int64, role string, clubID int64) (string, error)
	ValidateToken(token string) (*jwt.Token, error)
}
