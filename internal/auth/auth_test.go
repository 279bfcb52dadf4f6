package auth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newKeyPair(t *testing.T) (*ecdsa.PrivateKey, string) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	pemText := string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
	return key, pemText
}

func signEnvelope(t *testing.T, key *ecdsa.PrivateKey, claims envelopeClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodES256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign envelope: %v", err)
	}
	return token
}

func validClaims() envelopeClaims {
	return envelopeClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
		Initiator: "U1",
		Command: envelopeCommand{
			Name: "ask",
			Args: []CommandArg{{Name: "message", Value: "Benny - hello?"}},
		},
	}
}

func TestVerifyValidEnvelope(t *testing.T) {
	key, pemText := newKeyPair(t)
	v, err := NewEnvelopeVerifier(pemText)
	if err != nil {
		t.Fatalf("NewEnvelopeVerifier: %v", err)
	}

	inv, err := v.Verify(signEnvelope(t, key, validClaims()))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if inv.UserID != "U1" || inv.Command != "ask" {
		t.Errorf("invocation %+v", inv)
	}
	if inv.Args["message"] != "Benny - hello?" {
		t.Errorf("args = %v", inv.Args)
	}
}

func TestVerifyRejectsExpiredEnvelope(t *testing.T) {
	key, pemText := newKeyPair(t)
	v, _ := NewEnvelopeVerifier(pemText)

	claims := validClaims()
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	if _, err := v.Verify(signEnvelope(t, key, claims)); err == nil {
		t.Fatal("expected expiry rejection")
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	otherKey, _ := newKeyPair(t)
	_, pemText := newKeyPair(t)
	v, _ := NewEnvelopeVerifier(pemText)

	if _, err := v.Verify(signEnvelope(t, otherKey, validClaims())); err == nil {
		t.Fatal("expected signature rejection")
	}
}

func TestVerifyRejectsWrongAlgorithm(t *testing.T) {
	_, pemText := newKeyPair(t)
	v, _ := NewEnvelopeVerifier(pemText)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims()).SignedString([]byte("hmac-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := v.Verify(token); err == nil {
		t.Fatal("expected algorithm rejection")
	}
}

func TestVerifyRejectsEmptyToken(t *testing.T) {
	_, pemText := newKeyPair(t)
	v, _ := NewEnvelopeVerifier(pemText)

	if _, err := v.Verify("  "); err == nil {
		t.Fatal("expected rejection of empty token")
	}
}

func TestVerifyRejectsMissingInitiator(t *testing.T) {
	key, pemText := newKeyPair(t)
	v, _ := NewEnvelopeVerifier(pemText)

	claims := validClaims()
	claims.Initiator = ""
	if _, err := v.Verify(signEnvelope(t, key, claims)); err == nil {
		t.Fatal("expected rejection without initiator")
	}
}

func TestNewEnvelopeVerifierRejectsGarbage(t *testing.T) {
	if _, err := NewEnvelopeVerifier(""); err == nil {
		t.Error("expected error for empty key")
	}
	if _, err := NewEnvelopeVerifier("-----BEGIN PUBLIC KEY-----\nnot a key\n-----END PUBLIC KEY-----"); err == nil {
		t.Error("expected error for malformed key")
	}
	if _, err := NewEnvelopeVerifier("/nonexistent/key.pem"); err == nil {
		t.Error("expected error for missing key file")
	}
}

func TestCheckSharedSecret(t *testing.T) {
	cases := []struct {
		name   string
		secret string
		header string
		want   bool
	}{
		{"match", "s3cret", "s3cret", true},
		{"mismatch", "s3cret", "wrong", false},
		{"missing header", "s3cret", "", false},
		{"unconfigured secret", "", "anything", false},
		{"padded header", "s3cret", "  s3cret  ", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/admins", nil)
			if tc.header != "" {
				r.Header.Set(SecretHeader, tc.header)
			}
			if got := CheckSharedSecret(r, tc.secret); got != tc.want {
				t.Errorf("CheckSharedSecret = %v, want %v", got, tc.want)
			}
		})
	}
}
