package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/personvault/personvault/internal/metrics"
	"github.com/personvault/personvault/internal/model"
	"github.com/personvault/personvault/internal/service"
)

// Authentication errors.
var (
	ErrUnknownPrincipal = errors.New("unknown principal")
	ErrNotAdmin         = errors.New("principal is not an admin")
	ErrWrongPassword    = errors.New("wrong password")
	ErrInvalidToken     = errors.New("invalid token")
	ErrUnknownAlgorithm = errors.New("unsupported signing algorithm")
)

// signingMethods maps configured algorithm names to JWT methods.
var signingMethods = map[string]jwt.SigningMethod{
	"HS256": jwt.SigningMethodHS256,
	"HS384": jwt.SigningMethodHS384,
	"HS512": jwt.SigningMethodHS512,
}

// PersonGetter resolves identity numbers to person records.
// Implementations return service.ErrPersonNotFound for absent keys;
// *service.PersonService satisfies this.
type PersonGetter interface {
	GetPerson(ctx context.Context, identityNumber string) (*model.Person, error)
}

// Config holds the provider's immutable settings.
type Config struct {
	Secret    string
	Algorithm string
	TokenTTL  time.Duration
}

// Provider issues and validates bearer tokens. One instance is built
// by the composition root and shared by reference; configuration is
// immutable for the process lifetime.
type Provider struct {
	secret  []byte
	method  jwt.SigningMethod
	ttl     time.Duration
	people  PersonGetter
	metrics metrics.Recorder
}

// NewProvider creates a Provider. The algorithm name must be one of
// HS256, HS384 or HS512.
func NewProvider(cfg Config, people PersonGetter, recorder metrics.Recorder) (*Provider, error) {
	method, ok := signingMethods[cfg.Algorithm]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, cfg.Algorithm)
	}

	if cfg.Secret == "" {
		return nil, errors.New("token secret must not be empty")
	}

	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	return &Provider{
		secret:  []byte(cfg.Secret),
		method:  method,
		ttl:     cfg.TokenTTL,
		people:  people,
		metrics: recorder,
	}, nil
}

// Authenticate verifies the credentials for identityNumber and issues
// a bearer token. Only admin-flagged records may authenticate; this
// is a deliberate restriction.
func (p *Provider) Authenticate(ctx context.Context, identityNumber, password string) (model.Token, error) {
	person, err := p.people.GetPerson(ctx, identityNumber)
	if err != nil {
		if errors.Is(err, service.ErrPersonNotFound) {
			p.metrics.IncLoginFailure()
			return model.Token{}, fmt.Errorf("%w: %s", ErrUnknownPrincipal, identityNumber)
		}
		return model.Token{}, fmt.Errorf("failed to look up principal: %w", err)
	}

	if !person.IsAdmin {
		p.metrics.IncLoginFailure()
		return model.Token{}, fmt.Errorf("%w: %s", ErrNotAdmin, identityNumber)
	}

	if !person.HasCredentials() || !VerifyPassword(password, person.HashedPassword) {
		p.metrics.IncLoginFailure()
		return model.Token{}, ErrWrongPassword
	}

	token, err := p.issueToken(person.IdentityNumber)
	if err != nil {
		return model.Token{}, fmt.Errorf("failed to issue token: %w", err)
	}

	p.metrics.IncLoginSuccess()

	return token, nil
}

// ValidateToken verifies signature and expiry and resolves the
// subject to a live record. A subject that no longer exists yields
// ErrInvalidToken: deleting a record invalidates its outstanding
// tokens, there is no separate revocation list.
func (p *Provider) ValidateToken(ctx context.Context, tokenString string) (*model.Person, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{p.method.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		p.metrics.IncTokenRejected()
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		p.metrics.IncTokenRejected()
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	person, err := p.people.GetPerson(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, service.ErrPersonNotFound) {
			p.metrics.IncTokenRejected()
			return nil, fmt.Errorf("%w: subject no longer exists", ErrInvalidToken)
		}
		return nil, fmt.Errorf("failed to resolve token subject: %w", err)
	}

	return person, nil
}

// issueToken signs a token carrying the subject and absolute expiry.
func (p *Provider) issueToken(identityNumber string) (model.Token, error) {
	now := time.Now().UTC()

	claims := jwt.RegisteredClaims{
		Subject:   identityNumber,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
	}

	signed, err := jwt.NewWithClaims(p.method, claims).SignedString(p.secret)
	if err != nil {
		return model.Token{}, err
	}

	return model.Token{
		AccessToken: signed,
		TokenType:   model.TokenTypeBearer,
	}, nil
}
