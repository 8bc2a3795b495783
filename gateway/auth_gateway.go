package gateway

import (
	"context"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"audiobook-storefront/models"
)

// AuthGateway talks to the auth service
type AuthGateway struct {
	client client
}

// NewAuthGateway creates an AuthGateway for baseURL
func NewAuthGateway(baseURL string, httpClient *http.Client, logger *zap.Logger) *AuthGateway {
	return &AuthGateway{client: newClient(baseURL, httpClient, logger)}
}

var _ AuthGatewayInterface = (*AuthGateway)(nil)

// Login handles POST /api/v1/auth/token with form-encoded credentials
func (g *AuthGateway) Login(ctx context.Context, username, password string) (*models.TokenResponse, error) {
	const op = "login"
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var token models.TokenResponse
	if err := g.client.doJSON(ctx, request{
		Op:     op,
		Method: http.MethodPost,
		Path:   "/api/v1/auth/token",
		Form:   form,
	}, &token); err != nil {
		return nil, err
	}
	if token.AccessToken == "" {
		return nil, &ShapeError{Op: op, Reason: "missing access_token"}
	}
	return &token, nil
}
