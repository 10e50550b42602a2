package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/righthome/cosmos-api/internal/api/metrics"
	"github.com/righthome/cosmos-api/internal/core/ports"
)

// ConsultationHandler handles the public contact form and the back-office
// lead management routes.
type ConsultationHandler struct {
	service ports.ConsultationService
}

func NewConsultationHandler(service ports.ConsultationService) *ConsultationHandler {
	return &ConsultationHandler{service: service}
}

type createConsultationRequest struct {
	Name    string `json:"name"    validate:"required"`
	Email   string `json:"email"   validate:"required,email"`
	Phone   string `json:"phone"   validate:"required"`
	Project string `json:"project" validate:"required"`
	Message string `json:"message" validate:"required,max=2000"`
}

type updateConsultationRequest struct {
	Status           string     `json:"status" validate:"omitempty,oneof=pending contacted scheduled completed cancelled"`
	ConsultationDate *time.Time `json:"consultation_date"`
	Notes            string     `json:"notes" validate:"max=2000"`
}

// Create handles POST /consultations. This is the public contact form, no
// authentication required.
//
// @Summary      Submit a consultation request
// @Tags         consultations
// @Accept       json
// @Produce      json
// @Param        request  body      createConsultationRequest  true  "Contact form data"
// @Success      201      {object}  response{data=domain.Consultation}
// @Failure      400      {object}  errorResponse
// @Router       /consultations [post]
func (h *ConsultationHandler) Create(c echo.Context) error {
	var req createConsultationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	consultation, err := h.service.Create(c.Request().Context(), ports.CreateConsultationInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Project: req.Project,
		Message: req.Message,
	})
	if err != nil {
		return err
	}

	metrics.ConsultationsCreatedTotal.WithLabelValues(consultation.ProjectType).Inc()
	return c.JSON(http.StatusCreated, response{
		Success: true,
		Message: "consultation request received, we will contact you soon",
		Data:    consultation,
	})
}

// List handles GET /consultations.
//
// @Summary      List consultation leads
// @Tags         consultations
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response{data=[]domain.Consultation}
// @Failure      403  {object}  errorResponse
// @Router       /consultations [get]
func (h *ConsultationHandler) List(c echo.Context) error {
	consultations, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response{Success: true, Data: consultations})
}

// Get handles GET /consultations/:id.
//
// @Summary      Fetch one consultation lead
// @Tags         consultations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Consultation id"
// @Success      200  {object}  response{data=domain.Consultation}
// @Failure      404  {object}  errorResponse
// @Router       /consultations/{id} [get]
func (h *ConsultationHandler) Get(c echo.Context) error {
	consultation, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response{Success: true, Data: consultation})
}

// Update handles PUT /consultations/:id. Only status, consultation date and
// notes are editable; the visitor's submission is immutable.
//
// @Summary      Update a consultation lead
// @Tags         consultations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "Consultation id"
// @Param        request  body      updateConsultationRequest  true  "Editable fields"
// @Success      200      {object}  response{data=domain.Consultation}
// @Failure      400      {object}  errorResponse
// @Failure      404      {object}  errorResponse
// @Router       /consultations/{id} [put]
func (h *ConsultationHandler) Update(c echo.Context) error {
	var req updateConsultationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	consultation, err := h.service.Update(c.Request().Context(), ports.UpdateConsultationInput{
		ID:               c.Param("id"),
		Status:           req.Status,
		ConsultationDate: req.ConsultationDate,
		Notes:            req.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response{Success: true, Message: "consultation updated", Data: consultation})
}

// Delete handles DELETE /consultations/:id.
//
// @Summary      Delete a consultation lead
// @Tags         consultations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Consultation id"
// @Success      200  {object}  response
// @Failure      404  {object}  errorResponse
// @Router       /consultations/{id} [delete]
func (h *ConsultationHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response{Success: true, Message: "consultation deleted"})
}
