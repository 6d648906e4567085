package tenancy

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dentora/dentora/internal/platform/auth"
)

// CookieName holds the user's currently selected clinic across requests.
const CookieName = "currentTenantId"

type ctxKey string

const tenantContextKey ctxKey = "tenant_context"

// Context is the request-scoped tenant identity every handler operates
// under. It is built once per request by RequireTenant; downstream code never
// re-derives tenant or role on its own.
type Context struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	Role     auth.Role
}

// FromContext retrieves the tenant context. The zero value means the request
// did not pass through RequireTenant.
func FromContext(ctx context.Context) Context {
	tc, _ := ctx.Value(tenantContextKey).(Context)
	return tc
}

// WithContext returns ctx carrying the tenant context. Exported for handler
// tests.
func WithContext(ctx context.Context, tc Context) context.Context {
	return context.WithValue(ctx, tenantContextKey, tc)
}

// SetCookie writes the current-clinic cookie.
func SetCookie(c echo.Context, tenantID uuid.UUID, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    tenantID.String(),
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// RequireTenant resolves the caller's clinic (cookie first, earliest active
// membership as fallback), injects the tenant Context, and exposes the role
// to the capability middleware. Users without any membership get 401 so the
// client can route them to onboarding.
func RequireTenant(svc *Service, cookieSecure bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := auth.UserIDFromContext(c.Request().Context())
			if userID == uuid.Nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
			}

			var cookieTenantID *uuid.UUID
			if cookie, err := c.Cookie(CookieName); err == nil {
				if id, err := uuid.Parse(cookie.Value); err == nil {
					cookieTenantID = &id
				}
			}

			// ResolveTenant never surfaces store errors, so any failure here
			// means the user has no clinic to act in.
			tenant, membership, err := svc.ResolveTenant(c.Request().Context(), userID, cookieTenantID)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, ErrNoTenant.Error())
			}

			if cookieTenantID == nil || *cookieTenantID != tenant.ID {
				SetCookie(c, tenant.ID, cookieSecure)
			}

			tc := Context{UserID: userID, TenantID: tenant.ID, Role: membership.Role}
			c.SetRequest(c.Request().WithContext(WithContext(c.Request().Context(), tc)))
			c.Set(auth.RoleContextKey, membership.Role)

			return next(c)
		}
	}
}
