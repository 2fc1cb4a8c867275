package dashboard

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kinedesk/kinedesk/pkg/validation"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/dashboard", h.Metrics)
	api.GET("/dashboard/metrics", h.Metrics)
	api.GET("/dashboard/upcoming", h.Upcoming)
	api.GET("/dashboard/calendar", h.Calendar)
}

func (h *Handler) Metrics(c echo.Context) error {
	m, err := h.svc.Metrics(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) Upcoming(c echo.Context) error {
	rows, err := h.svc.Upcoming(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *Handler) Calendar(c echo.Context) error {
	events, err := h.svc.Calendar(c.Request().Context(), c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		if validation.IsValidation(err) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, events)
}
