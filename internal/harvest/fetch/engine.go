// Package fetch wraps every API call in the failure classification, retry
// and credential rotation protocol.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vietddude/trendlake/internal/core/domain"
	"github.com/vietddude/trendlake/internal/harvest/metrics"
)

// ErrFatal matches every terminal failure returned by the engine.
var ErrFatal = errors.New("fatal fetch failure")

// FatalError reports the condition that ended a call.
type FatalError struct {
	Request  domain.RequestType
	Class    Class
	Attempts int
	Err      error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s request failed after %d attempts (%s): %v",
		e.Request, e.Attempts, e.Class, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

func (e *FatalError) Is(target error) bool { return target == ErrFatal }

// Client executes one request against the API with a bound credential.
type Client interface {
	Do(ctx context.Context, req domain.FetchRequest) (domain.Envelope, error)
}

// ClientFactory binds a new client to a credential.
type ClientFactory func(cred domain.Credential) (Client, error)

// CredentialSource issues period-scoped credentials.
type CredentialSource interface {
	Get(ctx context.Context, period domain.Period, tier domain.Tier) (domain.Credential, error)
}

// Sleeper blocks for a cool-down.
type Sleeper func(ctx context.Context, d time.Duration) error

// Session is the client and credential a caller threads from one call into
// the next. The zero value makes the engine bind a primary credential.
type Session struct {
	Client     Client
	Credential domain.Credential
}

// Engine runs the retry state machine for each call.
type Engine struct {
	credentials CredentialSource
	newClient   ClientFactory
	period      domain.Period
	policy      Policy
	sleep       Sleeper
	log         *slog.Logger
}

// NewEngine creates an engine that draws credentials for period.
func NewEngine(
	credentials CredentialSource,
	newClient ClientFactory,
	period domain.Period,
	policy Policy,
	log *slog.Logger,
) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		credentials: credentials,
		newClient:   newClient,
		period:      period,
		policy:      policy.WithDefaults(DefaultPolicy),
		sleep:       sleepContext,
		log:         log.With("component", "fetch"),
	}
}

// SetSleeper replaces the cool-down wait.
func (e *Engine) SetSleeper(s Sleeper) {
	e.sleep = s
}

// Fetch issues req until it succeeds or fails terminally. The returned
// session, possibly rotated, must be passed to the next call.
func (e *Engine) Fetch(
	ctx context.Context,
	req domain.FetchRequest,
	sess Session,
) (domain.Envelope, Session, error) {
	sess, err := e.bind(ctx, req, sess)
	if err != nil {
		return nil, sess, err
	}

	failures := make(map[Class]int)
	attempts := 0
	rotated := false
	requestType := req.Type.String()

	for {
		attempts++
		metrics.FetchAttempts.WithLabelValues(requestType).Inc()

		env, err := sess.Client.Do(ctx, req)
		if err == nil {
			return env, sess, nil
		}

		class := Classify(err)
		if ctx.Err() != nil {
			class = ClassFatal
		}
		failures[class]++
		attempt := failures[class]
		metrics.FetchFailures.WithLabelValues(requestType, class.String()).Inc()

		log := e.log.With("request_type", requestType, "class", class.String(), "attempt", attempt)
		log.Warn("Fetch failed", "error", err)

		switch class {
		case ClassNotFound:
			if req.Type == domain.RequestVideos {
				log.Info("Listing not found, treating as empty page")
				return domain.EmptyEnvelope(), sess, nil
			}
			return nil, sess, e.fatal(req, class, attempts, err)

		case ClassQuotaExceeded:
			if rotated {
				return nil, sess, e.fatal(req, class, attempts,
					fmt.Errorf("quota exceeded on rotated %s: %w", sess.Credential, err))
			}
			next, rerr := e.rotate(ctx, sess)
			if rerr != nil {
				return nil, sess, e.fatal(req, class, attempts, errors.Join(err, rerr))
			}
			sess = next
			rotated = true

		case ClassTransientNetwork, ClassServiceOverload, ClassUnknownTransient:
			maxRetries, cooldown := e.policy.bound(class)
			if attempt > maxRetries {
				return nil, sess, e.fatal(req, class, attempts, err)
			}
			if serr := e.sleep(ctx, cooldown); serr != nil {
				return nil, sess, e.fatal(req, ClassFatal, attempts, serr)
			}
			metrics.FetchCooldown.WithLabelValues(class.String()).Add(cooldown.Seconds())

			if class == ClassTransientNetwork {
				client, cerr := e.newClient(sess.Credential)
				if cerr != nil {
					return nil, sess, e.fatal(req, ClassFatal, attempts,
						fmt.Errorf("rebuild client: %w", cerr))
				}
				sess.Client = client
			}

		default:
			return nil, sess, e.fatal(req, class, attempts, err)
		}
	}
}

func (e *Engine) bind(ctx context.Context, req domain.FetchRequest, sess Session) (Session, error) {
	if sess.Credential.IsZero() {
		cred, err := e.credentials.Get(ctx, e.period, domain.TierPrimary)
		if err != nil {
			return sess, e.fatal(req, ClassFatal, 0, fmt.Errorf("primary credential: %w", err))
		}
		sess.Credential = cred
		sess.Client = nil
	}
	if sess.Client == nil {
		client, err := e.newClient(sess.Credential)
		if err != nil {
			return sess, e.fatal(req, ClassFatal, 0, fmt.Errorf("build client: %w", err))
		}
		sess.Client = client
	}
	return sess, nil
}

// rotate swaps in the emergency credential. An identical or missing
// emergency key is an error: quota failures are never retried on the same key.
func (e *Engine) rotate(ctx context.Context, sess Session) (Session, error) {
	emergency, err := e.credentials.Get(ctx, e.period, domain.TierEmergency)
	if err != nil {
		return sess, fmt.Errorf("emergency credential: %w", err)
	}
	if emergency.IsZero() || emergency.SameKey(sess.Credential) {
		return sess, fmt.Errorf("no distinct emergency credential for period %s", e.period)
	}

	client, err := e.newClient(emergency)
	if err != nil {
		return sess, fmt.Errorf("build client: %w", err)
	}

	metrics.CredentialRotations.Inc()
	e.log.Warn("Rotated credential after quota exhaustion",
		"from", sess.Credential.String(), "to", emergency.String())

	return Session{Client: client, Credential: emergency}, nil
}

func (e *Engine) fatal(req domain.FetchRequest, class Class, attempts int, err error) error {
	return &FatalError{Request: req.Type, Class: class, Attempts: attempts, Err: err}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
