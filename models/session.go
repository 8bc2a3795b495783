package models

// Session is the authentication state persisted next to the cart
type Session struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// Authenticated reports whether a token is present
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// TokenResponse is returned by POST /api/v1/auth/token
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
