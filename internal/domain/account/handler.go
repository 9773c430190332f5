package account

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Deeppati2005/hms/internal/platform/apperr"
)

// Handler serves the account endpoints for a single role. One handler is
// mounted per role group (/admins, /doctors, /patients).
type Handler struct {
	svc  *Service
	role Role
}

func NewHandler(svc *Service, role Role) *Handler {
	return &Handler{svc: svc, role: role}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.GET("/check-username/:username", h.CheckUsername)
	g.POST("/reset-password", h.ResetPassword)
	g.POST("/logout", h.Logout)

	switch h.role {
	case RoleDoctor:
		g.GET("", h.List)
		g.GET("/:id", h.GetByID)
		g.PUT("/:username", h.UpdateByUsername)
		g.POST("/check-status", h.CheckDoctorStatus)
	case RolePatient:
		g.GET("/:id", h.GetByID)
		g.PUT("/:id", h.UpdateByID)
	}
}

func (h *Handler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	a, err := h.svc.Register(c.Request().Context(), h.role, req)
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, a)
}

// Login answers 200 with the account, or 200 with null when the
// credentials do not match.
func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	a, err := h.svc.Login(c.Request().Context(), h.role, req.Username, req.Password)
	if apperr.IsNotFound(err) {
		return c.JSON(http.StatusOK, nil)
	}
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) CheckUsername(c echo.Context) error {
	available, err := h.svc.CheckUsernameAvailability(c.Request().Context(), h.role, c.Param("username"))
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"available": available})
}

// ResetPassword reports every domain failure as 400.
func (h *Handler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgFieldsRequired)
	}
	msg, err := h.svc.ResetPassword(c.Request().Context(), h.role, req)
	if err != nil {
		if apperr.KindOf(err) != "" {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": msg})
}

// Logout is a no-op; the API keeps no sessions.
func (h *Handler) Logout(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": h.role.Title() + " logged out successfully"})
}

func (h *Handler) List(c echo.Context) error {
	accounts, err := h.svc.List(c.Request().Context(), h.role)
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, accounts)
}

func (h *Handler) GetByID(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	a, err := h.svc.GetByID(c.Request().Context(), h.role, id)
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) UpdateByID(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var patch ProfilePatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	a, err := h.svc.UpdateProfileByID(c.Request().Context(), h.role, id, patch)
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) UpdateByUsername(c echo.Context) error {
	var patch ProfilePatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	a, err := h.svc.UpdateProfileByUsername(c.Request().Context(), h.role, c.Param("username"), patch)
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) CheckDoctorStatus(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	res, err := h.svc.CheckDoctorStatus(c.Request().Context(), req.Username)
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, res)
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}
