package client

import (
	"context"
	"net/http"
)

// UsersClient covers user accounts.
type UsersClient struct {
	core *core
	base string
}

// Me returns the account behind the current bearer token.
func (c *UsersClient) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.core.do(ctx, http.MethodGet, c.base+"/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Create registers a user for an external identity.
func (c *UsersClient) Create(ctx context.Context, subID, username, pictureURL string) (*User, error) {
	body := struct {
		SubID      string `json:"sub_id"`
		Username   string `json:"username"`
		PictureURL string `json:"picture_url,omitempty"`
	}{SubID: subID, Username: username, PictureURL: pictureURL}
	var user User
	if err := c.core.do(ctx, http.MethodPost, c.base, body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// AuthClient exchanges external identity proofs for backend bearer tokens.
type AuthClient struct {
	core *core
	base string
}

// GoogleLogin trades a Google ID token for a backend bearer token.
func (c *AuthClient) GoogleLogin(ctx context.Context, idToken string) (*Token, error) {
	body := struct {
		IDToken string `json:"id_token"`
	}{IDToken: idToken}
	var token Token
	if err := c.core.do(ctx, http.MethodPost, c.base+"/token/google", body, &token); err != nil {
		return nil, err
	}
	return &token, nil
}
