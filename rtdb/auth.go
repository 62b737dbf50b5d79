package rtdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenScopes = "https://www.googleapis.com/auth/userinfo.email https://www.googleapis.com/auth/firebase.database"

// serviceAccountKey is the subset of the downloaded service-account
// credentials file we need.
type serviceAccountKey struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

// ServiceAccount mints store access tokens from a service-account key:
// a signed RS256 assertion is exchanged at the token endpoint for a
// bearer token, cached until shortly before expiry.
type ServiceAccount struct {
	key        serviceAccountKey
	HTTPClient *http.Client

	mu      sync.Mutex
	token   string
	expires time.Time
}

// LoadServiceAccount reads the credentials JSON from disk.
func LoadServiceAccount(path string) (*ServiceAccount, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials %s: %w", path, err)
	}
	var key serviceAccountKey
	if err := json.Unmarshal(raw, &key); err != nil {
		return nil, fmt.Errorf("parse credentials %s: %w", path, err)
	}
	if key.ClientEmail == "" || key.PrivateKey == "" || key.TokenURI == "" {
		return nil, fmt.Errorf("credentials %s: missing client_email, private_key or token_uri", path)
	}
	return &ServiceAccount{key: key, HTTPClient: &http.Client{Timeout: defaultTimeout}}, nil
}

func (sa *ServiceAccount) Token(ctx context.Context) (string, error) {
	sa.mu.Lock()
	defer sa.mu.Unlock()

	if sa.token != "" && time.Now().Before(sa.expires) {
		return sa.token, nil
	}

	assertion, err := sa.signAssertion()
	if err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("grant_type", "urn:ietf:params:oauth:grant-type:jwt-bearer")
	form.Set("assertion", assertion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sa.key.TokenURI, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := sa.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token exchange: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("token exchange: %w", err)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("token exchange: status %d: %s", resp.StatusCode, string(body))
	}

	var parsed struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("token exchange: decode: %w", err)
	}
	if parsed.AccessToken == "" {
		return "", fmt.Errorf("token exchange: empty access_token")
	}

	sa.token = parsed.AccessToken
	// Refresh a minute early so in-flight requests never carry a token
	// that expires mid-call.
	sa.expires = time.Now().Add(time.Duration(parsed.ExpiresIn)*time.Second - time.Minute)
	return sa.token, nil
}

func (sa *ServiceAccount) signAssertion() (string, error) {
	pk, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(sa.key.PrivateKey))
	if err != nil {
		return "", fmt.Errorf("parse private key: %w", err)
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   sa.key.ClientEmail,
		"scope": tokenScopes,
		"aud":   sa.key.TokenURI,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	}
	assertion, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(pk)
	if err != nil {
		return "", fmt.Errorf("sign assertion: %w", err)
	}
	return assertion, nil
}
