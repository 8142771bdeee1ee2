package gitpr

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	gogithub "github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"

	"github.com/remedyhq/remedy-agent/internal/config"
)

// appClient wraps the two GitHub App credential exchanges: a short-lived
// RS256 JWT signed with the app's private key, then an installation access
// token minted with that JWT.
type appClient struct {
	cfg config.GitHubConfig
}

// installationToken mints an installation access token for git pushes and
// API calls on the installation's repositories.
func (a appClient) installationToken(ctx context.Context) (string, error) {
	signed, err := a.appJWT()
	if err != nil {
		return "", err
	}

	instID, err := strconv.ParseInt(a.cfg.InstallationID, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid installation id %q: %w", a.cfg.InstallationID, err)
	}

	client, err := a.apiClient(ctx, signed)
	if err != nil {
		return "", err
	}
	tok, _, err := client.Apps.CreateInstallationToken(ctx, instID, nil)
	if err != nil {
		return "", fmt.Errorf("creating installation token: %w", err)
	}
	return tok.GetToken(), nil
}

// appJWT builds the app-level JWT GitHub expects: issued 60s in the past to
// absorb clock skew, valid for at most ten minutes.
func (a appClient) appJWT() (string, error) {
	key, err := a.privateKey()
	if err != nil {
		return "", err
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    a.cfg.AppID,
		IssuedAt:  jwt.NewNumericDate(now.Add(-60 * time.Second)),
		ExpiresAt: jwt.NewNumericDate(now.Add(9 * time.Minute)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("signing app JWT: %w", err)
	}
	return signed, nil
}

func (a appClient) privateKey() (*rsa.PrivateKey, error) {
	pemBytes, err := base64.StdEncoding.DecodeString(strings.TrimSpace(a.cfg.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("decoding app private key: %w", err)
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM(pemBytes)
	if err != nil {
		return nil, fmt.Errorf("parsing app private key: %w", err)
	}
	return key, nil
}

// apiClient builds a go-github client authenticating with the given bearer
// token, honouring an enterprise API URL override.
func (a appClient) apiClient(ctx context.Context, token string) (*gogithub.Client, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	client := gogithub.NewClient(oauth2.NewClient(ctx, ts))
	if a.cfg.APIURL != "" && !strings.Contains(a.cfg.APIURL, "api.github.com") {
		base := strings.TrimSuffix(a.cfg.APIURL, "/") + "/"
		var err error
		client, err = client.WithEnterpriseURLs(base, base)
		if err != nil {
			return nil, fmt.Errorf("configuring GitHub enterprise URLs: %w", err)
		}
	}
	return client, nil
}
