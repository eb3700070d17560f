package google

import (
	"path/filepath"
	"testing"
)

func TestValidateAccountName(t *testing.T) {
	tests := []struct {
		name    string
		account string
		wantErr bool
	}{
		{"valid default", "default", false},
		{"valid work", "work", false},
		{"valid with hyphen", "work-email", false},
		{"valid with underscore", "personal_email", false},
		{"valid alphanumeric", "account123", false},
		{"empty", "", true},
		{"with spaces", "my account", true},
		{"with special chars", "account@work", true},
		{"with slash", "work/personal", true},
		{"with dot", "work.email", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateAccountName(tt.account)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateAccountName() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetTokenFilePath(t *testing.T) {
	tests := []struct {
		name    string
		account string
		want    string
	}{
		{"default account", "default", "google-default.token"},
		{"work account", "work", "google-work.token"},
		{"personal account", "personal", "google-personal.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := getTokenFilePath(tt.account)
			if filepath.Base(got) != tt.want {
				t.Errorf("getTokenFilePath() = %v, want base %v", got, tt.want)
			}
		})
	}
}

func TestHasTokenForAccount(t *testing.T) {
	// Invalid account names never have tokens
	if HasTokenForAccount("invalid account") {
		t.Error("HasTokenForAccount() should return false for invalid account name")
	}

	if HasTokenForAccount("") {
		t.Error("HasTokenForAccount() should return false for empty account name")
	}
}

func TestHasToken_MatchesDefaultAccount(t *testing.T) {
	if HasToken() != HasTokenForAccount("default") {
		t.Error("HasToken() should return same result as HasTokenForAccount('default')")
	}
}

func TestGetOAuthConfig_Scopes(t *testing.T) {
	conf := GetOAuthConfig()

	if len(conf.Scopes) != len(DefaultOAuthScopes) {
		t.Fatalf("expected %d scopes, got %d", len(DefaultOAuthScopes), len(conf.Scopes))
	}

	found := false
	for _, scope := range conf.Scopes {
		if scope == "https://www.googleapis.com/auth/calendar.freebusy" {
			found = true
		}
	}
	if !found {
		t.Error("expected freebusy scope in OAuth config")
	}
}

func TestFileTokenProvider_HasTokenForAccount(t *testing.T) {
	provider := NewFileTokenProvider()

	if provider.HasTokenForAccount("no such account!") {
		t.Error("expected false for invalid account name")
	}
}
