package session

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/kinedesk/kinedesk/pkg/pagination"
	"github.com/kinedesk/kinedesk/pkg/validation"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/sessions", h.List)
	api.POST("/sessions", h.Create)
	api.GET("/sessions/:id", h.Get)
	api.PUT("/sessions/:id", h.Update)
	api.DELETE("/sessions/:id", h.Delete)
	api.PATCH("/sessions/:id/performed", h.SetPerformed)
	api.PATCH("/sessions/:id/paid", h.SetPaid)
	api.GET("/treatments/:id/sessions", h.ListForTreatment)
}

func (h *Handler) Create(c echo.Context) error {
	var s Session
	if err := c.Bind(&s); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Create(c.Request().Context(), &s); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, s)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	s, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var s Session
	if err := c.Bind(&s); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	s.ID = id
	if err := h.svc.Update(c.Request().Context(), &s); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

type flagBody struct {
	Value bool `json:"value"`
}

func (h *Handler) SetPerformed(c echo.Context) error {
	return h.patchFlag(c, h.svc.SetPerformed)
}

func (h *Handler) SetPaid(c echo.Context) error {
	return h.patchFlag(c, h.svc.SetPaid)
}

func (h *Handler) patchFlag(c echo.Context, set func(ctx context.Context, id int64, value bool) (*Session, error)) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var body flagBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	s, err := set(c.Request().Context(), id, body.Value)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, s)
}

// List returns sessions for a treatment or date window, oldest first.
// Filters: treatment_id, from, to (inclusive ISO dates).
func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	q := ListQuery{
		FromDate: c.QueryParam("from"),
		ToDate:   c.QueryParam("to"),
		Limit:    pg.Limit,
		Offset:   pg.Offset,
	}
	if raw := c.QueryParam("treatment_id"); raw != "" {
		tid, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || tid <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid treatment_id")
		}
		q.TreatmentID = tid
	}
	rows, total, err := h.svc.List(c.Request().Context(), q)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(rows, total, pg.Limit, pg.Offset))
}

// ListForTreatment returns a treatment's sessions, oldest first, optionally
// narrowed to an inclusive date range.
func (h *Handler) ListForTreatment(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	rows, total, err := h.svc.List(c.Request().Context(), ListQuery{
		TreatmentID: id,
		FromDate:    c.QueryParam("from"),
		ToDate:      c.QueryParam("to"),
		Limit:       pg.Limit,
		Offset:      pg.Offset,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(rows, total, pg.Limit, pg.Offset))
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, ErrNotFound.Error())
	case validation.IsValidation(err):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
