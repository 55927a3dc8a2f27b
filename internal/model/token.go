package model

// TokenTypeBearer is the only token type the service issues.
const TokenTypeBearer = "bearer"

// Token is the opaque credential returned by a successful login.
// Tokens are stateless: validity is determined by signature and the
// embedded expiry, never by server-side session state.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
