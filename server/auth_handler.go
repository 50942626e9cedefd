package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"tunemart/core/auth"
	"tunemart/logger"
	"tunemart/model"
	"tunemart/repository"
)

// RegisterRequest is the account-creation body.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// LoginRequest is the credential body.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// RegisterHandler creates an account with the ARTIST or CUSTOMER role.
func (h *APIHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	var violations []string
	if strings.TrimSpace(req.Username) == "" {
		violations = append(violations, "username is required")
	}
	if strings.TrimSpace(req.Email) == "" {
		violations = append(violations, "email is required")
	}
	if len(req.Password) < 8 {
		violations = append(violations, "password must be at least 8 characters")
	}
	if req.Role != model.RoleArtist && req.Role != model.RoleCustomer {
		violations = append(violations, "role must be ARTIST or CUSTOMER")
	}
	if len(violations) > 0 {
		writeJSON(w, http.StatusBadRequest, strings.Join(violations, "; "), nil)
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		h.log.Error("failed to hash password", logger.ErrorField(err))
		writeJSON(w, http.StatusInternalServerError, "Failed to create account", nil)
		return
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashed,
		Role:         req.Role,
	}
	id, err := h.users.Create(r.Context(), user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			writeJSON(w, http.StatusBadRequest, "Username or email already exists", nil)
			return
		}
		h.log.Error("failed to create user", logger.ErrorField(err))
		writeJSON(w, http.StatusInternalServerError, "Failed to create account", nil)
		return
	}
	user.ID = id

	token, err := h.tokens.Generate(id, user.Username, user.Role)
	if err != nil {
		h.log.Error("failed to generate token", logger.ErrorField(err))
		writeJSON(w, http.StatusInternalServerError, "Failed to create account", nil)
		return
	}

	h.log.Info("account created", logger.String("username", user.Username), logger.String("role", user.Role))
	writeJSON(w, http.StatusCreated, "Account created successfully", authResponse{Token: token, User: user})
}

// LoginHandler verifies credentials and issues a token.
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, "Username and password are required", nil)
		return
	}

	user, err := h.users.FindByUsername(r.Context(), req.Username)
	if err != nil {
		h.log.Error("failed to look up user", logger.ErrorField(err))
		writeJSON(w, http.StatusInternalServerError, "Login failed", nil)
		return
	}
	if user == nil || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		writeJSON(w, http.StatusUnauthorized, "Invalid username or password", nil)
		return
	}

	token, err := h.tokens.Generate(user.ID, user.Username, user.Role)
	if err != nil {
		h.log.Error("failed to generate token", logger.ErrorField(err))
		writeJSON(w, http.StatusInternalServerError, "Login failed", nil)
		return
	}

	h.log.Info("login succeeded", logger.String("username", user.Username))
	writeJSON(w, http.StatusOK, "Login successful", authResponse{Token: token, User: user})
}
