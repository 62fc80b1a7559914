// Package jwtverifier validates RS256 bearer tokens against a JWKS endpoint.
package jwtverifier

import (
	"context"
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"
)

var ErrUnauthorized = errors.New("unauthorized")

// Config carries the verification parameters. Issuer, Audience, and JWKSURL
// are deployment-provided; the rest have sensible defaults via config.Load.
type Config struct {
	Issuer   string
	Audience string
	JWKSURL  string

	// ClockSkew is tolerated when checking exp and nbf.
	ClockSkew time.Duration
	// RefreshInterval forces a periodic JWKS re-fetch so rotated keys are
	// picked up even while an old key is still cached.
	RefreshInterval time.Duration
	// MinRefreshInterval bounds how often an unknown kid may trigger a fetch.
	MinRefreshInterval time.Duration

	HTTPTimeout time.Duration
}

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type Verifier struct {
	cfg    Config
	client *http.Client
	clock  Clock

	mu          sync.Mutex
	keys        map[string]*rsa.PublicKey
	lastRefresh time.Time
}

func New(cfg Config) *Verifier {
	return NewWithOptions(cfg, nil, nil)
}

func NewWithOptions(cfg Config, httpClient *http.Client, clock Clock) *Verifier {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	if clock == nil {
		clock = realClock{}
	}
	return &Verifier{
		cfg:    cfg,
		client: httpClient,
		clock:  clock,
		keys:   map[string]*rsa.PublicKey{},
	}
}

type tokenHeader struct {
	Alg string `json:"alg"`
	Kid string `json:"kid"`
	Typ string `json:"typ"`
}

type tokenClaims struct {
	Iss string          `json:"iss"`
	Sub string          `json:"sub"`
	Aud json.RawMessage `json:"aud"`
	Exp *int64          `json:"exp"`
	Nbf *int64          `json:"nbf"`
}

// Verify checks an RS256 JWT and returns the subject from the `sub` claim.
// Any failure collapses to ErrUnauthorized; callers never learn why.
func (v *Verifier) Verify(ctx context.Context, token string) (string, error) {
	h, claims, signingInput, sig, err := splitToken(token)
	if err != nil {
		return "", ErrUnauthorized
	}
	if h.Alg != "RS256" || h.Kid == "" {
		return "", ErrUnauthorized
	}

	pub, err := v.keyFor(ctx, h.Kid)
	if err != nil || pub == nil {
		return "", ErrUnauthorized
	}

	sum := sha256.Sum256([]byte(signingInput))
	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA256, sum[:], sig); err != nil {
		return "", ErrUnauthorized
	}
	if err := v.checkClaims(claims); err != nil {
		return "", ErrUnauthorized
	}
	if claims.Sub == "" {
		return "", ErrUnauthorized
	}
	return claims.Sub, nil
}

func (v *Verifier) checkClaims(c tokenClaims) error {
	now := v.clock.Now()
	skew := v.cfg.ClockSkew

	if c.Iss != v.cfg.Issuer {
		return fmt.Errorf("iss mismatch")
	}
	if !audienceMatches(c.Aud, v.cfg.Audience) {
		return fmt.Errorf("aud mismatch")
	}
	if c.Exp == nil {
		return fmt.Errorf("missing exp")
	}
	if now.After(time.Unix(*c.Exp, 0).Add(skew)) {
		return fmt.Errorf("token expired")
	}
	if c.Nbf != nil && now.Before(time.Unix(*c.Nbf, 0).Add(-skew)) {
		return fmt.Errorf("token not yet valid")
	}
	return nil
}

// keyFor returns the cached key for kid, refreshing the JWKS when the cache
// is stale or the kid is unknown. Refreshes are serialized by v.mu; an
// unknown kid may only trigger a fetch once per MinRefreshInterval.
func (v *Verifier) keyFor(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	now := v.clock.Now()
	stale := v.lastRefresh.IsZero() ||
		(v.cfg.RefreshInterval > 0 && now.Sub(v.lastRefresh) >= v.cfg.RefreshInterval)
	unknownKid := v.keys[kid] == nil
	cooldownOver := v.lastRefresh.IsZero() || v.cfg.MinRefreshInterval <= 0 ||
		now.Sub(v.lastRefresh) >= v.cfg.MinRefreshInterval

	if stale || (unknownKid && cooldownOver) {
		keys, err := v.fetchJWKS(ctx)
		if err != nil {
			return nil, err
		}
		v.keys = keys
		v.lastRefresh = v.clock.Now()
	}
	return v.keys[kid], nil
}

func (v *Verifier) fetchJWKS(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.cfg.JWKSURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("jwks fetch failed: status=%d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return parseJWKS(body)
}

func splitToken(token string) (tokenHeader, tokenClaims, string, []byte, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return tokenHeader{}, tokenClaims{}, "", nil, fmt.Errorf("bad jwt parts")
	}
	headerB, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return tokenHeader{}, tokenClaims{}, "", nil, err
	}
	claimsB, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return tokenHeader{}, tokenClaims{}, "", nil, err
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return tokenHeader{}, tokenClaims{}, "", nil, err
	}
	var h tokenHeader
	if err := json.Unmarshal(headerB, &h); err != nil {
		return tokenHeader{}, tokenClaims{}, "", nil, err
	}
	var c tokenClaims
	if err := json.Unmarshal(claimsB, &c); err != nil {
		return tokenHeader{}, tokenClaims{}, "", nil, err
	}
	return h, c, parts[0] + "." + parts[1], sig, nil
}

// audienceMatches accepts aud as either a string or an array of strings.
func audienceMatches(raw json.RawMessage, expected string) bool {
	if len(raw) == 0 {
		return false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s == expected
	}
	var arr []string
	if err := json.Unmarshal(raw, &arr); err == nil {
		for _, v := range arr {
			if v == expected {
				return true
			}
		}
	}
	return false
}

type jwksDoc struct {
	Keys []jwk `json:"keys"`
}

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Alg string `json:"alg"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func parseJWKS(b []byte) (map[string]*rsa.PublicKey, error) {
	var set jwksDoc
	if err := json.Unmarshal(b, &set); err != nil {
		return nil, err
	}
	out := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, k := range set.Keys {
		if k.Kty != "RSA" || k.Kid == "" || k.N == "" || k.E == "" {
			continue
		}
		nb, err := base64.RawURLEncoding.DecodeString(k.N)
		if err != nil {
			return nil, err
		}
		eb, err := base64.RawURLEncoding.DecodeString(k.E)
		if err != nil {
			return nil, err
		}
		e := new(big.Int).SetBytes(eb).Int64()
		if e <= 0 || e > int64(^uint(0)>>1) {
			return nil, fmt.Errorf("invalid jwk exponent")
		}
		out[k.Kid] = &rsa.PublicKey{
			N: new(big.Int).SetBytes(nb),
			E: int(e),
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no usable jwks keys")
	}
	return out, nil
}
