package session

import (
	"net/http"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// RouteGuard glues the declarative route tree to the access evaluator. Each
// request is evaluated against the live store snapshot, so a session expiring
// mid-visit redirects on the very next navigation.
type RouteGuard struct {
	store   *Store
	cfg     Config
	logger  Logger
	metrics MetricsCollector

	// PendingHandler runs while hydration is still settling: a neutral
	// placeholder, never protected content and never a redirect.
	PendingHandler router.HandlerFunc
	ErrorHandler   func(c router.Context, err error) error
}

func NewRouteGuard(store *Store, cfg Config) *RouteGuard {
	g := &RouteGuard{
		store:   store,
		cfg:     cfg,
		logger:  defLogger{},
		metrics: noopMetrics{},
	}

	g.PendingHandler = g.defaultPendingHandler
	g.ErrorHandler = g.defaultErrHandler

	return g
}

func (g *RouteGuard) WithLogger(logger Logger) *RouteGuard {
	if logger != nil {
		g.logger = logger
	}
	return g
}

func (g *RouteGuard) WithMetrics(m MetricsCollector) *RouteGuard {
	g.metrics = normalizeMetrics(m)
	return g
}

// Protected wraps a route with the given access requirement.
func (g *RouteGuard) Protected(req AccessRequirement) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			snap := g.store.Snapshot()

			if snap.Loading() {
				return g.PendingHandler(ctx)
			}

			decision := Evaluate(snap, req)
			g.metrics.RecordGuardDecision(string(decision))

			if decision == Allow {
				if snap.User != nil {
					ctx.Locals(g.cfg.GetContextKey(), snap.User)
					ctx.SetContext(WithContext(ctx.Context(), snap.User))
				}
				return next(ctx)
			}

			return g.deny(ctx, snap, decision)
		}
	}
}

func (g *RouteGuard) deny(ctx router.Context, snap Snapshot, decision Decision) error {
	target := RedirectTarget(snap, decision)
	if target == "" {
		target = g.cfg.GetRejectedRouteDefault()
	}

	g.logger.Info(
		"Access denied, redirecting",
		"decision", decision,
		"path", ctx.OriginalURL(),
		"target", target,
	)

	if decision == DenyUnauthenticated {
		g.SetRedirect(ctx)
	}

	statusCode := http.StatusSeeOther
	if ctx.Method() == string(router.GET) {
		statusCode = http.StatusFound
	}
	return ctx.Redirect(target, statusCode)
}

// MakeClientRouteErrorHandler adapts the guard's error handling for routes
// whose handlers return session errors directly (form posts, API fan-outs).
// With optional set, failures log and fall through to the next handler
// instead of redirecting.
func (g *RouteGuard) MakeClientRouteErrorHandler(optional bool) func(router.Context, error) error {
	return func(ctx router.Context, err error) error {
		var richErr *errors.Error
		if !errors.As(err, &richErr) {
			richErr = errors.Wrap(err, errors.CategoryAuth, "Invalid session").
				WithCode(errors.CodeUnauthorized)
		}

		if optional {
			g.logger.Info("Optional session check failed, proceeding", "error", richErr.Message)
			return ctx.Next()
		}

		return g.ErrorHandler(ctx, richErr)
	}
}

// SetRedirect preserves the originally requested path so login can return the
// user afterward.
func (g *RouteGuard) SetRedirect(ctx router.Context) {
	rejectedRoute := g.cfg.GetRejectedRouteKey()

	ctx.Cookie(&router.Cookie{
		Name:     rejectedRoute,
		Value:    ctx.OriginalURL(),
		Expires:  time.Now().Add(time.Minute * 5),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

// GetRedirect consumes the preserved path, falling back to def.
func (g *RouteGuard) GetRedirect(ctx router.Context, def ...string) string {
	rejectedRoute := g.cfg.GetRejectedRouteKey()
	r := ctx.Cookies(rejectedRoute)
	if r == "" {
		if len(def) > 0 {
			return def[0]
		}
		return g.cfg.GetRejectedRouteDefault()
	}
	g.cookieDel(ctx, rejectedRoute)
	return r
}

// GetRedirectOrDefault resolves the post-login destination: the preserved
// path, the referer, or the configured default.
func (g *RouteGuard) GetRedirectOrDefault(ctx router.Context) string {
	rejectedRoute := g.cfg.GetRejectedRouteKey()
	refererHeader := string(ctx.Referer())

	r := ctx.Cookies(rejectedRoute, refererHeader)
	if r == "" {
		r = g.cfg.GetRejectedRouteDefault()
	}
	g.cookieDel(ctx, rejectedRoute)
	return r
}

func (g *RouteGuard) cookieDel(c router.Context, name string) {
	c.Cookie(&router.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (g *RouteGuard) defaultPendingHandler(ctx router.Context) error {
	// Neutral body: the SPA shell shows its own spinner while this settles.
	return ctx.Status(router.StatusOK).SendString("")
}

func (g *RouteGuard) defaultErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	g.logger.Info(
		"Guard error handler",
		"error", richErr.Message,
		"category", richErr.Category,
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)

	switch richErr.Category {
	case errors.CategoryAuth, errors.CategoryAuthz:
		g.SetRedirect(c)
		return c.Redirect(PathLogin, http.StatusSeeOther)
	default:
		return c.Status(richErr.Code).SendString(richErr.Message)
	}
}
