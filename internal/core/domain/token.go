package domain

// TokenTypeBearer is the only token type issued by the service.
const TokenTypeBearer = "Bearer"

// Claim names carried by every access token.
const (
	ClaimSubject   = "sub"
	ClaimExpiresAt = "exp"
	ClaimIssuedAt  = "iat"
)

// AuthToken is returned to a client after a successful login.
type AuthToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
