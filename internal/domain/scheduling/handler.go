package scheduling

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Deeppati2005/hms/internal/platform/apperr"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the appointment resource on g (/api/appointments).
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListAppointments)
	g.GET("/available-slots", h.GetAvailableSlots)
	g.GET("/:id", h.GetAppointment)
	g.POST("", h.CreateAppointment)
	g.PUT("/:id", h.UpdateAppointment)
	g.DELETE("/:id", h.DeleteAppointment)
}

// RegisterDoctorRoutes mounts a doctor's appointment listing on the doctors group.
func (h *Handler) RegisterDoctorRoutes(g *echo.Group) {
	g.GET("/:username/appointments", h.ListDoctorAppointments)
}

// RegisterPatientRoutes mounts patient booking endpoints on the patients group.
func (h *Handler) RegisterPatientRoutes(g *echo.Group) {
	g.GET("/:username/appointments", h.ListPatientAppointments)
	g.POST("/appointments", h.CreateAppointment)
	g.DELETE("/appointments/:id", h.DeleteAppointment)
}

func (h *Handler) ListAppointments(c echo.Context) error {
	appts, err := h.svc.ListAppointments(c.Request().Context())
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, appts)
}

func (h *Handler) GetAvailableSlots(c echo.Context) error {
	slots, err := h.svc.GetAvailableSlots(c.Request().Context(), c.QueryParam("doctorUsername"), c.QueryParam("date"))
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, slots)
}

func (h *Handler) GetAppointment(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	a, err := h.svc.GetAppointment(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) CreateAppointment(c echo.Context) error {
	var req BookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	a, err := h.svc.CreateAppointment(c.Request().Context(), req)
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) UpdateAppointment(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var patch AppointmentPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	a, err := h.svc.UpdateAppointment(c.Request().Context(), id, patch)
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteAppointment(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteAppointment(c.Request().Context(), id); err != nil {
		return apperr.HTTPError(err)
	}
	return c.NoContent(http.StatusOK)
}

func (h *Handler) ListDoctorAppointments(c echo.Context) error {
	appts, err := h.svc.ListByDoctor(c.Request().Context(), c.Param("username"))
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, appts)
}

func (h *Handler) ListPatientAppointments(c echo.Context) error {
	appts, err := h.svc.ListByPatient(c.Request().Context(), c.Param("username"))
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, appts)
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}
