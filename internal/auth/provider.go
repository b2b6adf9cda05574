package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// AttemptRecorder receives the outcome of every authentication attempt.
type AttemptRecorder interface {
	ObserveAttempt(outcome string, elapsed time.Duration)
}

// PasswordProvider authenticates identifier and secret pairs.
type PasswordProvider struct {
	accounts AccountLookup
	verifier CredentialVerifier
	limiter  *AttemptLimiter
	recorder AttemptRecorder
	log      logrus.FieldLogger
	now      func() time.Time
}

// ProviderOption configures PasswordProvider behavior.
type ProviderOption func(*PasswordProvider) error

// WithLogger sets the logger used for attempt outcomes.
func WithLogger(log logrus.FieldLogger) ProviderOption {
	return func(p *PasswordProvider) error {
		if log != nil {
			p.log = log
		}
		return nil
	}
}

// WithAttemptLimiter throttles attempts per identifier.
func WithAttemptLimiter(l *AttemptLimiter) ProviderOption {
	return func(p *PasswordProvider) error {
		p.limiter = l
		return nil
	}
}

// WithRecorder reports attempt outcomes, e.g. to metrics.
func WithRecorder(r AttemptRecorder) ProviderOption {
	return func(p *PasswordProvider) error {
		p.recorder = r
		return nil
	}
}

// WithClock overrides time source (useful for tests).
func WithClock(fn func() time.Time) ProviderOption {
	return func(p *PasswordProvider) error {
		if fn != nil {
			p.now = fn
		}
		return nil
	}
}

// NewPasswordProvider constructs a provider over the given collaborators.
func NewPasswordProvider(accounts AccountLookup, verifier CredentialVerifier, opts ...ProviderOption) (*PasswordProvider, error) {
	if accounts == nil {
		return nil, errors.New("auth: account lookup is required")
	}
	if verifier == nil {
		return nil, errors.New("auth: credential verifier is required")
	}
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	p := &PasswordProvider{
		accounts: accounts,
		verifier: verifier,
		log:      discard,
		now:      time.Now,
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Supports reports whether the provider handles kind.
func (p *PasswordProvider) Supports(kind CredentialKind) bool {
	return kind == CredentialPassword
}

// Authenticate verifies secret for identifier. Every returned error is a *Failure.
func (p *PasswordProvider) Authenticate(ctx context.Context, identifier, secret string) (identity AuthenticatedIdentity, err error) {
	start := p.now()
	defer func() {
		if r := recover(); r != nil {
			identity = AuthenticatedIdentity{}
			err = newFailure(FailureUnderlying, fmt.Errorf("panic during authentication: %v", r))
		}
		p.report(identifier, err, p.now().Sub(start))
	}()

	if identifier == "" {
		return AuthenticatedIdentity{}, newFailure(FailureIdentifierNotFound, errors.New("identifier is empty"))
	}
	if p.limiter != nil && !p.limiter.Allow(identifier) {
		return AuthenticatedIdentity{}, newFailure(FailureUnderlying, ErrTooManyAttempts)
	}

	account, err := p.accounts.FindByIdentifier(ctx, identifier)
	if err != nil {
		return AuthenticatedIdentity{}, classify(err)
	}
	details := NewDetails(account)

	ok, err := p.verifier.Matches(secret, details.PasswordHash())
	if err != nil {
		return AuthenticatedIdentity{}, newFailure(FailureUnderlying, fmt.Errorf("verify credentials: %w", err))
	}
	if !ok {
		return AuthenticatedIdentity{}, newFailure(FailureCredentialMismatch, nil)
	}
	return AuthenticatedIdentity{
		Identifier:    identifier,
		PasswordHash:  details.PasswordHash(),
		Authorities:   details.Authorities(),
		Authenticated: true,
	}, nil
}

func (p *PasswordProvider) report(identifier string, err error, elapsed time.Duration) {
	outcome := "authenticated"
	if err != nil {
		outcome = KindOf(err).String()
	}
	if p.recorder != nil {
		p.recorder.ObserveAttempt(outcome, elapsed)
	}
	entry := p.log.WithFields(logrus.Fields{
		"identifier": identifier,
		"outcome":    outcome,
		"elapsed":    elapsed.String(),
	})
	switch KindOf(err) {
	case 0:
		entry.Info("authentication succeeded")
	case FailureUnderlying:
		entry.WithError(err).Error("authentication error")
	default:
		entry.Warn("authentication rejected")
	}
}
