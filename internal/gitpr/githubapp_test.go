package gitpr

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/remedyhq/remedy-agent/internal/config"
)

func testKeyB64(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}
	pemBytes := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	return key, base64.StdEncoding.EncodeToString(pemBytes)
}

func TestAppJWTClaims(t *testing.T) {
	key, encoded := testKeyB64(t)
	app := appClient{cfg: config.GitHubConfig{AppID: "12345", PrivateKey: encoded}}

	signed, err := app.appJWT()
	if err != nil {
		t.Fatalf("appJWT: %v", err)
	}

	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(signed, &claims, func(tok *jwt.Token) (any, error) {
		return &key.PublicKey, nil
	}, jwt.WithValidMethods([]string{"RS256"}))
	if err != nil {
		t.Fatalf("parsing signed JWT: %v", err)
	}
	if !token.Valid {
		t.Fatal("token must be valid")
	}

	if claims.Issuer != "12345" {
		t.Fatalf("expected issuer 12345, got %q", claims.Issuer)
	}
	now := time.Now()
	if claims.IssuedAt == nil || claims.IssuedAt.After(now.Add(-30*time.Second)) {
		t.Fatalf("iat must be backdated for clock skew, got %v", claims.IssuedAt)
	}
	if claims.ExpiresAt == nil || claims.ExpiresAt.After(now.Add(10*time.Minute)) {
		t.Fatalf("exp must stay under GitHub's ten minute cap, got %v", claims.ExpiresAt)
	}
}

func TestAppJWTRejectsBadKeyMaterial(t *testing.T) {
	for name, encoded := range map[string]string{
		"not base64":  "%%%not-base64%%%",
		"not a pem":   base64.StdEncoding.EncodeToString([]byte("plain text")),
		"empty value": "",
	} {
		app := appClient{cfg: config.GitHubConfig{AppID: "1", PrivateKey: encoded}}
		if _, err := app.appJWT(); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
