package session

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Gateway orchestrates the backend auth calls and guarantees Store
// consistency even when calls fail. Terminal failures are reported through
// the store's error field; login and register additionally return the
// classified error so forms can surface the reason inline.
type Gateway struct {
	client   IdentityClient
	store    *Store
	logger   Logger
	notifier Notifier
	sink     ActivitySink
	metrics  MetricsCollector

	hydrationTimeout time.Duration

	loginInFlight atomic.Bool
	// expiredNotified gates the "session expired" notice to once per expiry
	// event; it resets on the next successful login.
	expiredNotified atomic.Bool
}

// DefaultHydrationTimeout bounds the boot-time identity check so a hung
// request cannot leave the route guard in the loading placeholder forever.
const DefaultHydrationTimeout = 15 * time.Second

// NewGateway returns a Gateway bound to the given client and store.
func NewGateway(client IdentityClient, store *Store) *Gateway {
	return &Gateway{
		client:           client,
		store:            store,
		logger:           defLogger{},
		notifier:         noopNotifier{},
		sink:             noopActivitySink{},
		metrics:          noopMetrics{},
		hydrationTimeout: DefaultHydrationTimeout,
	}
}

func (g *Gateway) WithLogger(logger Logger) *Gateway {
	if logger != nil {
		g.logger = logger
	}
	return g
}

// WithNotifier configures the user-visible notice channel.
func (g *Gateway) WithNotifier(n Notifier) *Gateway {
	g.notifier = normalizeNotifier(n)
	return g
}

// WithActivitySink configures an ActivitySink for emitting session events.
func (g *Gateway) WithActivitySink(sink ActivitySink) *Gateway {
	g.sink = normalizeActivitySink(sink)
	return g
}

// WithMetrics configures the metrics collector.
func (g *Gateway) WithMetrics(m MetricsCollector) *Gateway {
	g.metrics = normalizeMetrics(m)
	return g
}

// WithHydrationTimeout overrides the boot identity check deadline.
func (g *Gateway) WithHydrationTimeout(d time.Duration) *Gateway {
	if d > 0 {
		g.hydrationTimeout = d
	}
	return g
}

// WithConfig applies the gateway settings from cfg.
func (g *Gateway) WithConfig(cfg Config) *Gateway {
	if cfg == nil {
		return g
	}
	return g.WithHydrationTimeout(cfg.GetHydrationTimeout())
}

// Store exposes the session store for guard wiring and snapshot reads.
func (g *Gateway) Store() *Store {
	return g.store
}

// Hydrate restores session state on process start. An absent token settles
// unauthenticated immediately; a present token is validated against the
// backend. Every failure mode of that check, 401, timeout, malformed payload
// or transport error, fails closed: an unverifiable token is not trusted.
func (g *Gateway) Hydrate(ctx context.Context) {
	started := time.Now()

	token := g.store.BeginHydration(ctx)
	if token == "" {
		g.metrics.RecordHydration("absent", time.Since(started))
		return
	}

	seq := g.store.NextIdentitySeq()

	if TokenExpired(token, time.Now()) {
		g.logger.Info("persisted token already expired, skipping identity check")
		g.store.ApplyCurrentUserFailure(ctx, seq)
		g.metrics.RecordHydration("expired", time.Since(started))
		g.emit(ctx, ActivityEventHydrateFailure, "", map[string]any{"reason": "token expired"})
		return
	}

	// The timeout bounds the backend call only. Store transitions run on the
	// parent ctx so the durable token clear is not aborted by the deadline
	// that caused the failure.
	reqCtx, cancel := context.WithTimeout(ctx, g.hydrationTimeout)
	defer cancel()

	user, err := g.client.CurrentUser(reqCtx, token)
	if err != nil {
		g.logger.Warn("hydration identity check failed, failing closed: %v", err)
		g.store.ApplyCurrentUserFailure(ctx, seq)
		g.metrics.RecordHydration("failure", time.Since(started))
		g.emit(ctx, ActivityEventHydrateFailure, "", map[string]any{"error": err.Error()})
		return
	}

	if g.store.ApplyCurrentUserSuccess(ctx, seq, user) {
		g.metrics.RecordHydration("success", time.Since(started))
		g.emit(ctx, ActivityEventHydrateSuccess, user.ID, nil)
	}
}

// Login performs the credential exchange. A login submitted while a previous
// attempt is still in flight is rejected rather than raced.
func (g *Gateway) Login(ctx context.Context, identifier, secret string) error {
	if !g.loginInFlight.CompareAndSwap(false, true) {
		return ErrLoginInFlight
	}
	defer g.loginInFlight.Store(false)

	g.store.BeginAuthenticating()

	user, token, err := g.client.Login(ctx, identifier, secret)
	if err != nil {
		g.store.ApplyLoginFailure(ctx, UserMessage(err))
		g.metrics.RecordLoginFailure(failureReason(err))
		g.emit(ctx, ActivityEventLoginFailure, "", map[string]any{
			"identifier": identifier,
			"error":      err.Error(),
		})
		return err
	}

	g.store.ApplyLoginSuccess(ctx, user, token)
	g.expiredNotified.Store(false)
	g.metrics.RecordLoginSuccess()
	g.emit(ctx, ActivityEventLoginSuccess, user.ID, map[string]any{
		"identifier": identifier,
		"role":       user.Role,
	})

	return nil
}

// Register creates an account. It does NOT authenticate the caller unless the
// backend also returned a usable token; vendor and restaurant registrations
// typically await verification first.
func (g *Gateway) Register(ctx context.Context, payload RegistrationPayload) (*User, error) {
	user, token, err := g.client.Register(ctx, payload)
	if err != nil {
		return nil, err
	}

	g.emit(ctx, ActivityEventRegister, user.ID, map[string]any{"role": user.Role})

	if token != "" {
		g.store.ApplyLoginSuccess(ctx, user, token)
		g.expiredNotified.Store(false)
	}

	return user, nil
}

// Logout is client-authoritative: the backend is notified best-effort, then
// the local session is cleared unconditionally. It never fails the caller.
func (g *Gateway) Logout(ctx context.Context) {
	snap := g.store.Snapshot()

	if snap.Token != "" {
		if err := g.client.Logout(ctx, snap.Token); err != nil {
			g.logger.Warn("backend logout failed, clearing local session anyway: %v", err)
		}
	}

	g.store.ApplyLogout(ctx)
	g.emit(ctx, ActivityEventLogout, userID(snap.User), nil)
}

// RefreshIdentity re-validates the current session, used after profile
// mutations and on intercepted 401s. A newer call supersedes an older one
// still in flight. Transient transport failures leave the session unchanged;
// only an explicit unauthorized response invalidates it.
func (g *Gateway) RefreshIdentity(ctx context.Context) error {
	snap := g.store.Snapshot()
	if snap.Token == "" {
		return nil
	}

	seq := g.store.NextIdentitySeq()

	user, err := g.client.CurrentUser(ctx, snap.Token)
	if err != nil {
		if IsUnauthorizedError(err) {
			if g.store.ApplyCurrentUserFailure(ctx, seq) {
				g.notifyExpired(ctx)
			}
			return err
		}
		g.logger.Warn("identity refresh failed transiently, keeping session: %v", err)
		return err
	}

	g.store.ApplyCurrentUserSuccess(ctx, seq, user)
	return nil
}

// HandleUnauthorized is the callback for any authenticated API call that came
// back not-authorized. It forces logout and surfaces the expiry notice at
// most once until the next successful login, so simultaneous in-flight
// failures do not spam the user.
func (g *Gateway) HandleUnauthorized(ctx context.Context) {
	snap := g.store.Snapshot()
	g.store.ApplyLogout(ctx)

	if snap.Token != "" {
		g.notifyExpired(ctx)
	}
}

func (g *Gateway) notifyExpired(ctx context.Context) {
	if !g.expiredNotified.CompareAndSwap(false, true) {
		return
	}

	g.metrics.RecordSessionExpired()
	g.notifier.SessionExpired(ctx, ErrSessionExpired.Message)
	g.emit(ctx, ActivityEventExpired, "", nil)
}

func (g *Gateway) emit(ctx context.Context, eventType ActivityEventType, userID string, metadata map[string]any) {
	event := ActivityEvent{
		ID:        uuid.New(),
		EventType: eventType,
		UserID:    userID,
		Metadata:  metadata,
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	if err := g.sink.Record(ctx, event); err != nil {
		g.logger.Warn("activity sink record error: %v", err)
	}
}

func failureReason(err error) string {
	switch {
	case IsValidationError(err):
		return "validation"
	case IsNetworkError(err):
		return "network"
	default:
		return "credentials"
	}
}

func userID(u *User) string {
	if u == nil {
		return ""
	}
	return u.ID
}
