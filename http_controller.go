package session

import (
	stderrors "errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/nyaruka/phonenumbers"
)

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// AuthControllerRoutes configures the mounted paths.
type AuthControllerRoutes struct {
	Login    string
	Register string
	Logout   string
	Session  string
}

// AuthController exposes the session operations to the SPA as JSON endpoints:
// login, register, logout, and a read-only session snapshot.
type AuthController struct {
	gateway *Gateway
	logger  Logger
	Routes  *AuthControllerRoutes
}

type AuthControllerOption func(*AuthController) *AuthController

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.logger = logger
		}
		return c
	}
}

func WithControllerRoutes(routes *AuthControllerRoutes) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if routes != nil {
			c.Routes = routes
		}
		return c
	}
}

func NewAuthController(gateway *Gateway, opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		gateway: gateway,
		logger:  defLogger{},
		Routes: &AuthControllerRoutes{
			Login:    "/auth/login",
			Register: "/auth/register",
			Logout:   "/auth/logout",
			Session:  "/auth/session",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.gateway == nil {
		panic("Missing Gateway in auth controller...")
	}

	return c
}

// RegisterRoutes mounts the controller on the given router group.
func (a *AuthController) RegisterRoutes(group RouteRegistrar) {
	group.Post(a.Routes.Login, a.LoginPost)
	group.Post(a.Routes.Register, a.RegisterPost)
	group.Post(a.Routes.Logout, a.LogoutPost)
	group.Get(a.Routes.Session, a.SessionGet)
}

// LoginRequest payload
type LoginRequest struct {
	Identifier string `form:"identifier" json:"identifier"`
	Secret     string `form:"secret" json:"secret"`
}

// Validate will run validation rules. Identifiers are phone numbers for
// vendors and restaurants, email for platform admins.
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Identifier,
			validation.Required,
			validation.By(validIdentifier),
		),
		validation.Field(
			&r.Secret,
			validation.Required,
		),
	)
}

// RegisterRequest payload
type RegisterRequest struct {
	Name         string `form:"name" json:"name"`
	Phone        string `form:"phone" json:"phone"`
	Email        string `form:"email" json:"email"`
	Password     string `form:"password" json:"password"`
	Role         string `form:"role" json:"role"`
	BusinessName string `form:"businessName" json:"businessName"`
}

// Validate will run validation rules
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Phone, validation.Required, validation.By(validPhone)),
		validation.Field(&r.Email, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 128)),
		validation.Field(&r.Role, validation.Required, validation.In(
			string(RoleVendor),
			string(RoleRestaurantOwner),
			string(RoleRestaurantManager),
		)),
	)
}

func (a *AuthController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]any{
			"success": false,
			"message": "unable to parse request",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]any{
			"success": false,
			"message": err.Error(),
		})
	}

	identifier := normalizeIdentifier(payload.Identifier)

	if err := a.gateway.Login(ctx.Context(), identifier, payload.Secret); err != nil {
		return a.handleError(ctx, err)
	}

	snap := a.gateway.Store().Snapshot()
	return ctx.JSON(router.StatusOK, map[string]any{
		"success":   true,
		"user":      snap.User,
		"dashboard": DashboardFor(snap.Role()),
	})
}

func (a *AuthController) RegisterPost(ctx router.Context) error {
	payload := new(RegisterRequest)

	if err := ctx.Bind(payload); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]any{
			"success": false,
			"message": "unable to parse request",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]any{
			"success": false,
			"message": err.Error(),
		})
	}

	role, _ := ParseRole(payload.Role)

	user, err := a.gateway.Register(ctx.Context(), RegistrationPayload{
		Name:         payload.Name,
		Phone:        normalizeIdentifier(payload.Phone),
		Email:        payload.Email,
		Password:     payload.Password,
		Role:         role,
		BusinessName: payload.BusinessName,
	})
	if err != nil {
		return a.handleError(ctx, err)
	}

	snap := a.gateway.Store().Snapshot()
	return ctx.JSON(router.StatusCreated, map[string]any{
		"success":         true,
		"user":            user,
		"isAuthenticated": snap.IsAuthenticated(),
	})
}

// LogoutPost always reports success: logout is client-authoritative.
func (a *AuthController) LogoutPost(ctx router.Context) error {
	a.gateway.Logout(ctx.Context())
	return ctx.JSON(router.StatusOK, map[string]any{
		"success": true,
	})
}

// SessionGet returns the read-only session snapshot the SPA shell polls.
func (a *AuthController) SessionGet(ctx router.Context) error {
	snap := a.gateway.Store().Snapshot()
	return ctx.JSON(router.StatusOK, map[string]any{
		"user":            snap.User,
		"isAuthenticated": snap.IsAuthenticated(),
		"loading":         snap.Loading(),
		"error":           snap.Error,
	})
}

func (a *AuthController) handleError(ctx router.Context, err error) error {
	var richErr *errors.Error
	if !stderrors.As(err, &richErr) {
		a.logger.Error("unclassified controller error: %v", err)
		return ctx.JSON(router.StatusInternalServerError, map[string]any{
			"success": false,
			"message": "An unexpected error occurred",
		})
	}

	status := router.StatusInternalServerError
	switch richErr.Category {
	case errors.CategoryValidation, errors.CategoryBadInput:
		status = router.StatusBadRequest
	case errors.CategoryAuth, errors.CategoryAuthz:
		status = router.StatusUnauthorized
	case errors.CategoryConflict:
		status = router.StatusConflict
	case errors.CategoryOperation:
		status = router.StatusServiceUnavailable
	}

	return ctx.JSON(status, map[string]any{
		"success": false,
		"message": richErr.Message,
	})
}

// validIdentifier accepts a valid phone number or an email address.
func validIdentifier(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}

	if err := validPhone(s); err == nil {
		return nil
	}

	return is.Email.Validate(s)
}

// validPhone validates against the Bangladesh numbering plan, the
// marketplace's home region; E.164 input from other regions also passes.
func validPhone(value any) error {
	s, _ := value.(string)
	num, err := phonenumbers.Parse(s, "BD")
	if err != nil {
		return err
	}
	if !phonenumbers.IsValidNumber(num) {
		return stderrors.New("must be a valid phone number")
	}
	return nil
}

// normalizeIdentifier canonicalizes phone identifiers to E.164 so the backend
// sees one spelling per account; emails pass through unchanged.
func normalizeIdentifier(s string) string {
	num, err := phonenumbers.Parse(s, "BD")
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return s
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}
