package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/righthome/cosmos-api/internal/core/ports"
)

// AdminHandler handles the back-office user management and dashboard routes.
// All routes require an authenticated admin; the RBAC middleware enforces it.
type AdminHandler struct {
	service ports.AdminService
}

func NewAdminHandler(service ports.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

type createUserRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role"     validate:"omitempty,oneof=user admin"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

// Stats handles GET /admin/stats.
//
// @Summary      Dashboard aggregates
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response{data=ports.StatsResult}
// @Failure      403  {object}  errorResponse
// @Router       /admin/stats [get]
func (h *AdminHandler) Stats(c echo.Context) error {
	stats, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response{Success: true, Data: stats})
}

// ListUsers handles GET /admin/users.
//
// @Summary      List all accounts
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response{data=[]accountResponse}
// @Failure      403  {object}  errorResponse
// @Router       /admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	accounts, err := h.service.ListAccounts(c.Request().Context())
	if err != nil {
		return err
	}

	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	return c.JSON(http.StatusOK, response{Success: true, Data: out})
}

// CreateUser handles POST /admin/users. Accounts created here skip email
// verification.
//
// @Summary      Create an account
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      createUserRequest  true  "Account data"
// @Success      201      {object}  response{data=accountResponse}
// @Failure      409      {object}  errorResponse
// @Router       /admin/users [post]
func (h *AdminHandler) CreateUser(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	account, err := h.service.CreateAccount(c.Request().Context(), ports.CreateAccountInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, response{
		Success: true,
		Message: "user created",
		Data:    toAccountResponse(account),
	})
}

// DeleteUser handles DELETE /admin/users/:id.
//
// @Summary      Delete an account
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account id"
// @Success      200  {object}  response
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	callerID, err := ctxAccountID(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteAccount(c.Request().Context(), c.Param("id"), callerID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response{Success: true, Message: "user deleted"})
}

// PromoteUser handles POST /admin/users/:id/promote.
//
// @Summary      Grant the admin role
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account id"
// @Success      200  {object}  response
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /admin/users/{id}/promote [post]
func (h *AdminHandler) PromoteUser(c echo.Context) error {
	if err := h.service.Promote(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response{Success: true, Message: "user promoted to admin"})
}

// DemoteUser handles POST /admin/users/:id/demote.
//
// @Summary      Revoke the admin role
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account id"
// @Success      200  {object}  response
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /admin/users/{id}/demote [post]
func (h *AdminHandler) DemoteUser(c echo.Context) error {
	callerID, err := ctxAccountID(c)
	if err != nil {
		return err
	}

	if err := h.service.Demote(c.Request().Context(), c.Param("id"), callerID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response{Success: true, Message: "user demoted to regular user"})
}
