package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/hongminglow/campuslearn-be/internal/auth"
	"github.com/hongminglow/campuslearn-be/internal/http/respond"
	"github.com/hongminglow/campuslearn-be/internal/models/dto"
	"github.com/hongminglow/campuslearn-be/internal/service"
)

// AuthHandler owns the register, login and profile endpoints.
type AuthHandler struct {
	accounts *service.AuthService
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(accounts *service.AuthService) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

// Register attaches auth routes to r. protect wraps routes that need a
// verified caller.
func (h *AuthHandler) Register(r *mux.Router, protect func(http.Handler) http.Handler) {
	r.HandleFunc("/auth/register", h.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", h.handleLogin).Methods(http.MethodPost)
	r.Handle("/auth/me", protect(http.HandlerFunc(h.handleMe))).Methods(http.MethodGet)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	user, err := h.accounts.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, "user registered successfully", user)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	token, user, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "login successful", dto.LoginResponse{Token: token, User: user})
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	user, err := h.accounts.CurrentUser(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", user)
}
