package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/righthome/cosmos-api/internal/core/ports"
)

// AdminOnly loads the authenticated account and rejects callers without the
// admin role. Session tokens carry only the account id, so the role is always
// read fresh from the store; a demotion takes effect on the next request.
func AdminOnly(repo ports.AccountRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			accountID, _ := c.Get("account_id").(string)
			if accountID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}

			account, err := repo.FindByID(c.Request().Context(), accountID)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "account no longer exists")
			}
			if !account.IsAdmin() {
				return echo.NewHTTPError(http.StatusForbidden, "admin access required")
			}

			c.Set("account_role", account.Role)
			return next(c)
		}
	}
}
