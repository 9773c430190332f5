package admin

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Deeppati2005/hms/internal/domain/account"
	"github.com/Deeppati2005/hms/internal/platform/apperr"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the console on the admins group. The shared account
// endpoints (register, login, ...) are mounted separately by account.Handler.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListAdmins)
	g.GET("/profile", h.GetProfile)
	g.PUT("/profile", h.UpdateProfile)
	g.GET("/doctors", h.ListDoctors)
	g.GET("/doctors/:id/status", h.GetDoctorStatus)
	g.PUT("/doctors/:id/status", h.UpdateDoctorStatus)
	g.GET("/patients", h.ListPatients)
	g.DELETE("/patients/:username", h.DeletePatient)
	g.GET("/appointments", h.ListAppointments)
	g.GET("/:username", h.GetAdmin)
}

func (h *Handler) ListAdmins(c echo.Context) error {
	admins, err := h.svc.ListAdmins(c.Request().Context())
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, admins)
}

func (h *Handler) GetAdmin(c echo.Context) error {
	a, err := h.svc.GetAdmin(c.Request().Context(), c.Param("username"))
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) GetProfile(c echo.Context) error {
	a, err := h.svc.Profile(c.Request().Context())
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) UpdateProfile(c echo.Context) error {
	var patch account.ProfilePatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	a, err := h.svc.UpdateProfile(c.Request().Context(), patch)
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) GetDoctorStatus(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	st, err := h.svc.DoctorStatus(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) UpdateDoctorStatus(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	res, err := h.svc.SetDoctorStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) ListDoctors(c echo.Context) error {
	doctors, err := h.svc.ListDoctors(c.Request().Context())
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, doctors)
}

func (h *Handler) ListPatients(c echo.Context) error {
	patients, err := h.svc.ListPatients(c.Request().Context())
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, patients)
}

func (h *Handler) ListAppointments(c echo.Context) error {
	appts, err := h.svc.ListAppointments(c.Request().Context())
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, appts)
}

func (h *Handler) DeletePatient(c echo.Context) error {
	msg, err := h.svc.DeletePatient(c.Request().Context(), c.Param("username"))
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": msg})
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}
