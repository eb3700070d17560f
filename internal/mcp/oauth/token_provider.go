package oauth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/giantswarm/mcp-oauth/storage"
)

// TokenProvider implements google.TokenProvider using an OAuth token store.
// This lets calendar clients use tokens obtained through the HTTP OAuth flow
// instead of tokens stored on disk.
type TokenProvider struct {
	store storage.TokenStore
}

// NewTokenProvider creates a token provider backed by the given store.
func NewTokenProvider(store storage.TokenStore) *TokenProvider {
	return &TokenProvider{store: store}
}

// GetTokenForAccount retrieves a Google OAuth token for the given account.
// When the context carries an authenticated OAuth user, their token takes
// precedence over the account name lookup.
func (p *TokenProvider) GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error) {
	if userInfo, ok := GetUserFromContext(ctx); ok && userInfo != nil && userInfo.Email != "" {
		if token, err := p.store.GetToken(ctx, userInfo.Email); err == nil {
			return token, nil
		}
	}

	token, err := p.store.GetToken(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("no Google OAuth token found for account %s: authenticate through your MCP client first", account)
	}
	return token, nil
}

// HasTokenForAccount checks if a token exists in the store for the account.
func (p *TokenProvider) HasTokenForAccount(account string) bool {
	_, err := p.store.GetToken(context.Background(), account)
	return err == nil
}

// SaveToken stores a Google OAuth token for the given account.
func (p *TokenProvider) SaveToken(ctx context.Context, account string, token *oauth2.Token) error {
	return p.store.SaveToken(ctx, account, token)
}
