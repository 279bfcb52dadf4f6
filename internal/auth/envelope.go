// Package auth guards the two inbound surfaces: signed command envelopes on
// the bot routes and a shared secret header on the service routes.
package auth

import (
	"crypto/ecdsa"
	"fmt"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/foundrgate/foundrgate/internal/commands"
)

// EnvelopeHeader carries the signed command envelope on bot requests.
const EnvelopeHeader = "x-oc-jwt"

// CommandArg is one named argument inside a signed envelope.
type CommandArg struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type envelopeCommand struct {
	Name string       `json:"name"`
	Args []CommandArg `json:"args"`
}

type envelopeClaims struct {
	jwt.RegisteredClaims
	Initiator string          `json:"initiator"`
	Command   envelopeCommand `json:"command"`
}

// EnvelopeVerifier checks envelope signatures against the platform's public
// key. Only ES256 envelopes are accepted; expiry is honored.
type EnvelopeVerifier struct {
	key    *ecdsa.PublicKey
	parser *jwt.Parser
}

// NewEnvelopeVerifier builds a verifier from a PEM public key, given inline
// or as a file path.
func NewEnvelopeVerifier(pemSource string) (*EnvelopeVerifier, error) {
	pemSource = strings.TrimSpace(pemSource)
	if pemSource == "" {
		return nil, fmt.Errorf("envelope public key is not configured")
	}
	pemBytes := []byte(pemSource)
	if !strings.Contains(pemSource, "-----BEGIN") {
		data, err := os.ReadFile(pemSource)
		if err != nil {
			return nil, fmt.Errorf("failed to read public key file: %w", err)
		}
		pemBytes = data
	}
	key, err := jwt.ParseECPublicKeyFromPEM(pemBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	return &EnvelopeVerifier{
		key:    key,
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodES256.Alg()})),
	}, nil
}

// Verify checks the envelope and returns the invocation it authorizes.
func (v *EnvelopeVerifier) Verify(token string) (commands.Invocation, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return commands.Invocation{}, fmt.Errorf("missing command envelope")
	}
	var claims envelopeClaims
	if _, err := v.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	}); err != nil {
		return commands.Invocation{}, fmt.Errorf("invalid command envelope: %w", err)
	}
	if strings.TrimSpace(claims.Initiator) == "" {
		return commands.Invocation{}, fmt.Errorf("invalid command envelope: no initiator")
	}
	if strings.TrimSpace(claims.Command.Name) == "" {
		return commands.Invocation{}, fmt.Errorf("invalid command envelope: no command")
	}
	args := make(map[string]string, len(claims.Command.Args))
	for _, a := range claims.Command.Args {
		args[a.Name] = a.Value
	}
	return commands.Invocation{
		UserID:  claims.Initiator,
		Command: claims.Command.Name,
		Args:    args,
	}, nil
}
