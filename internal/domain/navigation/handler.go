package navigation

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	mgr *Manager
}

func NewHandler(mgr *Manager) *Handler {
	return &Handler{mgr: mgr}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	nav := api.Group("/nav")
	nav.GET("/view", h.View)
	nav.POST("/dashboard", h.Dashboard)
	nav.POST("/patients", h.Patients)
	nav.POST("/treatments", h.Treatments)
	nav.POST("/sessions", h.Sessions)
	nav.POST("/back", h.Back)
	nav.POST("/select", h.Select)
}

// View returns the current state plus the rows visible at that level,
// with any stale selection already collapsed.
func (h *Handler) View(c echo.Context) error {
	v, err := h.mgr.View(c.Request().Context(), c.QueryParam("search"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) Dashboard(c echo.Context) error {
	return c.JSON(http.StatusOK, h.mgr.GoDashboard())
}

func (h *Handler) Patients(c echo.Context) error {
	return c.JSON(http.StatusOK, h.mgr.GoPatients())
}

func (h *Handler) Treatments(c echo.Context) error {
	st, err := h.mgr.OpenTreatments()
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) Sessions(c echo.Context) error {
	st, err := h.mgr.OpenSessions()
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) Back(c echo.Context) error {
	return c.JSON(http.StatusOK, h.mgr.Back())
}

type selectBody struct {
	ID int64 `json:"id"`
}

// Select records a selection at the current level. The level decides which
// slot the id lands in.
func (h *Handler) Select(c echo.Context) error {
	var body selectBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if body.ID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var (
		st  State
		err error
	)
	switch h.mgr.State().Level {
	case LevelPatients:
		st, err = h.mgr.SelectPatient(body.ID)
	case LevelTreatments:
		st, err = h.mgr.SelectTreatment(body.ID)
	case LevelSessions:
		st, err = h.mgr.SelectSession(body.ID)
	default:
		return echo.NewHTTPError(http.StatusConflict, "nothing selectable at the dashboard")
	}
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, st)
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNoPatientSelected),
		errors.Is(err, ErrNoTreatmentSelected),
		errors.Is(err, ErrWrongLevel):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
