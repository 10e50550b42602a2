package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/righthome/cosmos-api/internal/api/metrics"
	"github.com/righthome/cosmos-api/internal/core/ports"
)

// maxImageBytes caps gallery uploads at 5 MiB.
const maxImageBytes = 5 << 20

// GalleryHandler handles the project-image gallery routes.
type GalleryHandler struct {
	service ports.GalleryService
}

func NewGalleryHandler(service ports.GalleryService) *GalleryHandler {
	return &GalleryHandler{service: service}
}

type updateImageRequest struct {
	Title       string `json:"title"       validate:"required"`
	Description string `json:"description"`
	Service     string `json:"service"     validate:"required"`
	SubService  string `json:"sub_service"`
}

// Upload handles POST /project-images/upload. Multipart form fields: title,
// description, service, sub_service, and the file under "image".
//
// @Summary      Upload a project image
// @Tags         project-images
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        title        formData  string  true  "Image title"
// @Param        description  formData  string  true  "Image description"
// @Param        service      formData  string  true  "Service category"
// @Param        sub_service  formData  string  true  "Sub-category"
// @Param        image        formData  file    true   "Image file (max 5 MiB)"
// @Success      201          {object}  response{data=domain.ProjectImage}
// @Failure      400          {object}  errorResponse
// @Router       /project-images/upload [post]
func (h *GalleryHandler) Upload(c echo.Context) error {
	title := c.FormValue("title")
	service := c.FormValue("service")
	if title == "" || service == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title and service are required")
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "image file is required")
	}
	if fileHeader.Size > maxImageBytes {
		return echo.NewHTTPError(http.StatusBadRequest, "image exceeds the 5 MiB limit")
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return echo.NewHTTPError(http.StatusBadRequest, "only image files are accepted")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "could not read uploaded file")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "could not read uploaded file")
	}
	if len(data) > maxImageBytes {
		return echo.NewHTTPError(http.StatusBadRequest, "image exceeds the 5 MiB limit")
	}

	img, err := h.service.Upload(c.Request().Context(), ports.UploadImageInput{
		Title:       title,
		Description: c.FormValue("description"),
		Service:     service,
		SubService:  c.FormValue("sub_service"),
		Filename:    fileHeader.Filename,
		ContentType: contentType,
		Data:        data,
	})
	if err != nil {
		return err
	}

	metrics.GalleryUploadsTotal.WithLabelValues(img.Service).Inc()
	return c.JSON(http.StatusCreated, response{Success: true, Message: "image uploaded", Data: img})
}

// ListByService handles GET /project-images/service/:service. Public route
// used by the site gallery pages.
//
// @Summary      List project images for a service category
// @Tags         project-images
// @Produce      json
// @Param        service  path      string  true  "Service category (e.g. kitchens)"
// @Success      200      {object}  response{data=[]domain.ProjectImage}
// @Failure      400      {object}  errorResponse
// @Router       /project-images/service/{service} [get]
func (h *GalleryHandler) ListByService(c echo.Context) error {
	images, err := h.service.ListByService(c.Request().Context(), c.Param("service"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response{Success: true, Data: images})
}

// Update handles PUT /project-images/:id. Metadata only; replacing the image
// bytes means deleting and re-uploading.
//
// @Summary      Update project image metadata
// @Tags         project-images
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string              true  "Image id"
// @Param        request  body      updateImageRequest  true  "Metadata"
// @Success      200      {object}  response{data=domain.ProjectImage}
// @Failure      400      {object}  errorResponse
// @Failure      404      {object}  errorResponse
// @Router       /project-images/{id} [put]
func (h *GalleryHandler) Update(c echo.Context) error {
	var req updateImageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	img, err := h.service.Update(c.Request().Context(), ports.UpdateImageInput{
		ID:          c.Param("id"),
		Title:       req.Title,
		Description: req.Description,
		Service:     req.Service,
		SubService:  req.SubService,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response{Success: true, Message: "image updated", Data: img})
}

// Delete handles DELETE /project-images/:id. Removes the stored object first,
// then the metadata document.
//
// @Summary      Delete a project image
// @Tags         project-images
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Image id"
// @Success      200  {object}  response
// @Failure      404  {object}  errorResponse
// @Router       /project-images/{id} [delete]
func (h *GalleryHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response{Success: true, Message: "image deleted"})
}
