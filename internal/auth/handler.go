package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/onlinestore/onlinestore/internal/platform/httpx"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	validator      *validator.Validate
	loginPerMinute int
}

// NewHandler constructs a Handler instance. loginPerMinute caps login requests
// per client IP; zero disables the extra limit.
func NewHandler(logger *slog.Logger, service *Service, loginPerMinute int) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:         logger,
		service:        service,
		validator:      validator.New(validator.WithRequiredStructEnabled()),
		loginPerMinute: loginPerMinute,
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h.loginPerMinute > 0 {
		r.With(httprate.Limit(h.loginPerMinute, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP))).
			Post("/login", h.handleLogin)
	} else {
		r.Post("/login", h.handleLogin)
	}
	r.Post("/signup", h.handleSignup)
	r.Post("/logout", h.handleLogout)
}

type loginRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required,max=120"`
}

type loginResponse struct {
	Token    string   `json:"token"`
	Type     string   `json:"type"`
	UserID   int64    `json:"userId"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

type signupRequest struct {
	Username string   `json:"username" validate:"required,min=3,max=50"`
	Email    string   `json:"email" validate:"required,email,max=100"`
	Password string   `json:"password" validate:"required"`
	Roles    []string `json:"roles" validate:"omitempty,max=4,dive,required,max=32"`
}

type principalResponse struct {
	UserID   int64    `json:"userId"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Error: malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Error: "+validationMessage(err))
		return
	}

	res, err := h.service.Login(r.Context(), LoginInput{
		Username: req.Username,
		Password: req.Password,
		ClientIP: clientIP(r),
	})
	switch {
	case err == nil:
	case errors.Is(err, ErrInvalidCredentials):
		httpx.Error(w, http.StatusUnauthorized, "Invalid username or password")
		return
	case errors.Is(err, ErrTooManyAttempts):
		httpx.Error(w, http.StatusTooManyRequests, "Too many login attempts")
		return
	default:
		h.logger.Error("login failed", slog.Any("error", err), slog.String("request_id", middleware.GetReqID(r.Context())))
		httpx.Error(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	httpx.JSON(w, http.StatusOK, loginResponse{
		Token:    res.Token,
		Type:     "Bearer",
		UserID:   res.UserID,
		Username: res.Username,
		Email:    res.Email,
		Roles:    res.Roles,
	})
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Message(w, http.StatusBadRequest, "Error: malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Message(w, http.StatusBadRequest, "Error: "+validationMessage(err))
		return
	}

	_, err := h.service.Signup(r.Context(), SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Roles:    req.Roles,
	})
	switch {
	case err == nil:
		httpx.Message(w, http.StatusOK, "User CREATED")
	case errors.Is(err, ErrUsernameTaken):
		httpx.Message(w, http.StatusBadRequest, "Error: username exists")
	case errors.Is(err, ErrUnknownRole):
		httpx.Message(w, http.StatusBadRequest, "Error: unknown role requested")
	case errors.Is(err, ErrPasswordTooLong):
		httpx.Message(w, http.StatusBadRequest, "Error: password too long")
	default:
		h.logger.Error("signup failed", slog.Any("error", err), slog.String("request_id", middleware.GetReqID(r.Context())))
		httpx.Error(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if p, ok := PrincipalFromContext(r.Context()); ok {
		h.service.Logout(r.Context(), &p)
	}
	httpx.Message(w, http.StatusOK, "User logged out")
}

// Me returns the principal bound to the request.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		return
	}
	httpx.JSON(w, http.StatusOK, principalResponse{
		UserID:   p.ID,
		Username: p.Username,
		Email:    p.Email,
		Roles:    p.RoleStrings(),
	})
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request"
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return strings.Join(fields, "; ")
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
