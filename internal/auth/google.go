package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

var ErrInvalidGoogleToken = errors.New("invalid google token")

// GoogleIdentity is the verified subset of a Google ID token.
type GoogleIdentity struct {
	Subject string // Google's stable account id
	Email   string
	Name    string
}

// TokenVerifier verifies an external identity provider's ID token.
// The production implementation talks to Google; tests inject fakes.
type TokenVerifier interface {
	Verify(ctx context.Context, idToken string) (*GoogleIdentity, error)
}

const googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// googleVerifier validates ID tokens against Google's tokeninfo endpoint.
type googleVerifier struct {
	clientID string
	client   *http.Client
}

// NewGoogleVerifier creates a TokenVerifier for the given OAuth client id.
func NewGoogleVerifier(clientID string) TokenVerifier {
	return &googleVerifier{
		clientID: clientID,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (v *googleVerifier) Verify(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	endpoint := googleTokenInfoURL + "?id_token=" + url.QueryEscape(idToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach token verifier: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrInvalidGoogleToken
	}

	var payload struct {
		Aud           string `json:"aud"`
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified string `json:"email_verified"`
		Name          string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode token info: %w", err)
	}

	if payload.Aud != v.clientID || payload.Email == "" || payload.EmailVerified != "true" {
		return nil, ErrInvalidGoogleToken
	}

	return &GoogleIdentity{
		Subject: payload.Sub,
		Email:   payload.Email,
		Name:    payload.Name,
	}, nil
}
