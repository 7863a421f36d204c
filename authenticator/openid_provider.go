package authenticator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// OpenIDProvider logs users in against any OpenID Connect issuer
type OpenIDProvider struct {
	verifier *oidc.IDTokenVerifier
	config   oauth2.Config
}

// OpenIDConfig holds OpenID Connect configuration
type OpenIDConfig struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	CallbackURL  string
}

// Validate lists every missing setting in one error
func (c OpenIDConfig) Validate() error {
	var missing []string
	for name, value := range map[string]string{
		"issuer URL":    c.IssuerURL,
		"client ID":     c.ClientID,
		"client secret": c.ClientSecret,
		"callback URL":  c.CallbackURL,
	} {
		if value == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	slices.Sort(missing)
	return fmt.Errorf("openid: missing %s", strings.Join(missing, ", "))
}

// NewOpenIDProvider fetches the issuer's discovery document, so it needs the
// issuer to be reachable.
func NewOpenIDProvider(ctx context.Context, cfg OpenIDConfig) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	issuer, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("openid: discovery of %s failed: %w", cfg.IssuerURL, err)
	}

	return &OpenIDProvider{
		verifier: issuer.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		config: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Endpoint:     issuer.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}, nil
}

// GetAuthURL is where the browser goes to sign in; state comes back on the callback
func (p *OpenIDProvider) GetAuthURL(state string) string {
	return p.config.AuthCodeURL(state)
}

// ExchangeCode trades the callback code for tokens at the issuer
func (p *OpenIDProvider) ExchangeCode(ctx context.Context, code string) (*Token, error) {
	t, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("openid: code exchange: %w", err)
	}
	return tokenFromOAuth2(t), nil
}

// GetClaims checks the ID token signature and audience before decoding it
func (p *OpenIDProvider) GetClaims(ctx context.Context, token *Token) (Claims, error) {
	if token == nil || token.IDToken == "" {
		return nil, errors.New("openid: response carried no id_token")
	}

	idToken, err := p.verifier.Verify(ctx, token.IDToken)
	if err != nil {
		return nil, fmt.Errorf("openid: id_token rejected: %w", err)
	}

	claims := Claims{}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("openid: decoding claims: %w", err)
	}
	return claims, nil
}

func tokenFromOAuth2(t *oauth2.Token) *Token {
	idToken, _ := t.Extra("id_token").(string)
	return &Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		IDToken:      idToken,
		Expiry:       t.Expiry.Unix(),
	}
}
