package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/righthome/cosmos-api/internal/core/domain"
	"github.com/righthome/cosmos-api/internal/core/ports"
)

// roleRepo implements only the lookup AdminOnly needs; the embedded interface
// satisfies the rest.
type roleRepo struct {
	ports.AccountRepository
	accounts map[string]*domain.Account
}

func (r *roleRepo) FindByID(_ context.Context, id string) (*domain.Account, error) {
	if a, ok := r.accounts[id]; ok {
		return a, nil
	}
	return nil, domain.ErrAccountNotFound
}

func adminOnlyContext(t *testing.T, accountID string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if accountID != "" {
		c.Set("account_id", accountID)
	}
	return c, rec
}

func TestAdminOnly_AllowsAdmin(t *testing.T) {
	repo := &roleRepo{accounts: map[string]*domain.Account{
		"adm": {ID: "adm", Role: domain.RoleAdmin},
	}}
	c, rec := adminOnlyContext(t, "adm")

	called := false
	handler := AdminOnly(repo)(func(c echo.Context) error {
		called = true
		if got := c.Get("account_role"); got != domain.RoleAdmin {
			t.Fatalf("account_role = %v, want admin", got)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAdminOnly_ForbidsRegularUser(t *testing.T) {
	repo := &roleRepo{accounts: map[string]*domain.Account{
		"usr": {ID: "usr", Role: domain.RoleUser},
	}}
	c, _ := adminOnlyContext(t, "usr")

	handler := AdminOnly(repo)(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	err := handler(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 HTTPError, got %v", err)
	}
}

func TestAdminOnly_RejectsDeletedAccount(t *testing.T) {
	repo := &roleRepo{accounts: map[string]*domain.Account{}}
	c, _ := adminOnlyContext(t, "gone")

	handler := AdminOnly(repo)(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	err := handler(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestAdminOnly_RequiresAuthContext(t *testing.T) {
	repo := &roleRepo{accounts: map[string]*domain.Account{}}
	c, _ := adminOnlyContext(t, "")

	handler := AdminOnly(repo)(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	err := handler(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}
