package cdnsign

import (
	"crypto/rsa"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultTTL se usa cuando la config no define url_ttl_seconds.
const DefaultTTL = 3600 * time.Second

// SigningConfig es la parte "pública" de la config de firma.
type SigningConfig struct {
	KeyPairID  string        // Key-Pair-Id registrado en la CDN
	Domain     string        // host de la distribución, sin esquema ni '/' final
	DefaultTTL time.Duration // > 0; 0 => DefaultTTL
}

func (c SigningConfig) withDefaults() SigningConfig {
	if c.DefaultTTL == 0 {
		c.DefaultTTL = DefaultTTL
	}
	return c
}

// Validate chequea la config una sola vez, al construir el Issuer.
func (c SigningConfig) Validate() error {
	if strings.TrimSpace(c.KeyPairID) == "" {
		return fmt.Errorf("%w: key pair id is required", ErrConfiguration)
	}
	d := c.Domain
	switch {
	case strings.TrimSpace(d) == "":
		return fmt.Errorf("%w: distribution domain is required", ErrConfiguration)
	case strings.Contains(d, "://"):
		return fmt.Errorf("%w: distribution domain %q must not include a scheme", ErrConfiguration, d)
	case strings.Contains(d, "/"):
		return fmt.Errorf("%w: distribution domain %q must be a bare host (no path, no trailing slash)", ErrConfiguration, d)
	case strings.ContainsAny(d, " \t\r\n?#"):
		return fmt.Errorf("%w: distribution domain %q contains invalid characters", ErrConfiguration, d)
	}
	if c.DefaultTTL < time.Second {
		return fmt.Errorf("%w: default ttl must be at least 1s (got %s)", ErrConfiguration, c.DefaultTTL)
	}
	return nil
}

// SignedURL es el resultado de Issue.
type SignedURL struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Issuer emite URLs firmadas. Es inmutable y seguro para uso concurrente.
type Issuer struct {
	cfg SigningConfig
	key *KeyMaterial
	now func() time.Time
}

// Option personaliza el Issuer.
type Option func(*Issuer)

// WithClock reemplaza time.Now (tests, CLI con --at).
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) {
		if now != nil {
			i.now = now
		}
	}
}

// NewIssuer valida la config y arma el Issuer con una clave ya cargada.
func NewIssuer(cfg SigningConfig, key *KeyMaterial, opts ...Option) (*Issuer, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if key == nil {
		return nil, fmt.Errorf("%w: key material is required", ErrConfiguration)
	}
	if key.KeyPairID() != cfg.KeyPairID {
		return nil, fmt.Errorf("%w: key material belongs to %q, config expects %q", ErrConfiguration, key.KeyPairID(), cfg.KeyPairID)
	}
	i := &Issuer{cfg: cfg, key: key, now: time.Now}
	for _, o := range opts {
		o(i)
	}
	return i, nil
}

// KeyPairID devuelve el Key-Pair-Id que viaja en las URLs.
func (i *Issuer) KeyPairID() string { return i.cfg.KeyPairID }

// Domain devuelve el host de la distribución.
func (i *Issuer) Domain() string { return i.cfg.Domain }

// DefaultTTL devuelve el TTL aplicado cuando el caller no pide uno.
func (i *Issuer) DefaultTTL() time.Duration { return i.cfg.DefaultTTL }

// PublicKey devuelve la clave pública (para verificación/diagnóstico).
func (i *Issuer) PublicKey() *rsa.PublicKey { return i.key.Public() }

// Issue firma objectPath con canned policy.
// ttl <= 0 usa el TTL por defecto. El instante se lee una sola vez: el
// Expires firmado y ExpiresAt devuelto son el mismo segundo.
func (i *Issuer) Issue(objectPath string, ttl time.Duration) (*SignedURL, error) {
	if err := validateObjectPath(objectPath); err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = i.cfg.DefaultTTL
	}
	expiresAt := i.now().Add(ttl).Truncate(time.Second).UTC()

	resource := ResourceURL(i.cfg.Domain, objectPath)
	policy, err := BuildPolicy(resource, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("%w: build policy: %w", ErrSigning, err)
	}
	raw, err := SignPolicy(i.key.signer, policy)
	if err != nil {
		return nil, err
	}

	return &SignedURL{
		URL:       cannedURL(resource, expiresAt.Unix(), EncodeSignature(raw), i.cfg.KeyPairID),
		ExpiresAt: expiresAt,
	}, nil
}

func validateObjectPath(p string) error {
	if p == "" {
		return fmt.Errorf("%w: object path is required", ErrValidation)
	}
	if !strings.HasPrefix(p, "/") {
		return fmt.Errorf("%w: object path %q must start with '/'", ErrValidation, p)
	}
	if !utf8.ValidString(p) {
		return fmt.Errorf("%w: object path %q is not valid UTF-8", ErrValidation, p)
	}
	return nil
}

// cannedURL arma ?Expires=..&Signature=..&Key-Pair-Id=.. en ese orden, sin url-encoding extra.
func cannedURL(resource string, epoch int64, signature, keyPairID string) string {
	var b strings.Builder
	b.Grow(len(resource) + len(signature) + len(keyPairID) + 48)
	b.WriteString(resource)
	b.WriteString("?Expires=")
	b.WriteString(strconv.FormatInt(epoch, 10))
	b.WriteString("&Signature=")
	b.WriteString(signature)
	b.WriteString("&Key-Pair-Id=")
	b.WriteString(keyPairID)
	return b.String()
}
