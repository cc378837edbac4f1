package account

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ssegota/daignostics/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires the auth endpoints. Registration and login are
// public; /auth/me requires a session.
func (h *Handler) RegisterRoutes(public, api *echo.Group) {
	public.POST("/auth/register", h.Register)
	public.POST("/auth/login", h.Login)
	api.GET("/auth/me", h.Me)
}

type registerRequest struct {
	Role         string   `json:"role"`
	Username     string   `json:"username"`
	Email        string   `json:"email"`
	Password     string   `json:"password"`
	FullName     string   `json:"full_name,omitempty"`
	Institutions []string `json:"institutions,omitempty"`
}

func (h *Handler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	switch req.Role {
	case "doctor":
		a, d, err := h.svc.RegisterDoctor(ctx, req.Username, req.Email, req.Password, req.FullName, req.Institutions)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return c.JSON(http.StatusCreated, map[string]interface{}{"account": a, "doctor": d})
	case "patient":
		a, p, err := h.svc.RegisterPatient(ctx, req.Username, req.Email, req.Password)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return c.JSON(http.StatusCreated, map[string]interface{}{"account": a, "patient": p})
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "role must be doctor or patient")
	}
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Identifier == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "identifier and password are required")
	}
	result, err := h.svc.Login(c.Request().Context(), req.Identifier, req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

// Me returns the session's account and resolved role.
func (h *Handler) Me(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := uuid.Parse(auth.AccountIDFromContext(ctx))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "no session")
	}
	a, err := h.svc.GetAccount(ctx, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "account not found")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"account":  a,
		"role":     auth.RoleFromContext(ctx),
		"owner_id": auth.OwnerIDFromContext(ctx),
	})
}
