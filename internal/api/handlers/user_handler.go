package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/avelara/keyauth-be/internal/auth"
	"github.com/avelara/keyauth-be/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// UserHandler handles HTTP requests for user management.
type UserHandler struct {
	users    services.UserServiceProvider
	resets   services.PasswordResetProvider
	verifier *auth.Verifier
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users services.UserServiceProvider, resets services.PasswordResetProvider, verifier *auth.Verifier) *UserHandler {
	return &UserHandler{users: users, resets: resets, verifier: verifier}
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Image    string `json:"image"`
	Bio      string `json:"bio"`
	Phone    string `json:"phone"`
}

// AuthPayload defines the structure for login requests.
type AuthPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles new user registration and signs the user in.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.users.Register(r.Context(), services.RegisterInput{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
		Image:    payload.Image,
		Bio:      payload.Bio,
		Phone:    payload.Phone,
	})
	if err != nil {
		log.Warn().Err(err).Str("email", payload.Email).Msg("Failed to register user")
		writeError(w, err)
		return
	}

	token, err := h.verifier.IssueSessionToken(user.ID.Hex())
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID.Hex()).Msg("Failed to issue session token")
		writeMessage(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"user":  user,
		"token": token,
	})
}

// Login handles user authentication and session token issuance.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload AuthPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.users.Authenticate(r.Context(), payload.Email, payload.Password)
	if err != nil {
		log.Warn().Err(err).Str("email", payload.Email).Msg("Failed authentication attempt")
		writeError(w, err)
		return
	}

	token, err := h.verifier.IssueSessionToken(user.ID.Hex())
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID.Hex()).Msg("Failed to issue session token")
		writeMessage(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":  user,
		"token": token,
	})
}

// Logout clears the session cookie. Tokens are stateless, so there is
// nothing to invalidate server-side.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
		Path:     "/",
	})
	writeMessage(w, http.StatusOK, "Logged out successfully")
}

// GetUser retrieves the currently authenticated user's profile.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("User from token not found")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateUser handles updating the authenticated user's profile fields.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var payload struct {
		Name  string `json:"name"`
		Image string `json:"image"`
		Bio   string `json:"bio"`
		Phone string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), userID, services.ProfileUpdate{
		Name:  payload.Name,
		Image: payload.Image,
		Bio:   payload.Bio,
		Phone: payload.Phone,
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to update user")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// ChangePassword handles changing the authenticated user's password.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var payload struct {
		OldPassword string `json:"oldPassword"`
		Password    string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.users.ChangePassword(r.Context(), userID, payload.OldPassword, payload.Password); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to change password")
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Password updated successfully")
}

// ForgotPassword issues a reset token and emails its redemption link.
func (h *UserHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.resets.RequestReset(r.Context(), payload.Email); err != nil {
		log.Warn().Err(err).Str("email", payload.Email).Msg("Failed to request password reset")
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Password reset email sent")
}

// ResetPassword redeems a reset link secret for a new password.
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	rawSecret := chi.URLParam(r, "resetToken")

	var payload struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.resets.ResetPassword(r.Context(), rawSecret, payload.Password); err != nil {
		log.Warn().Err(err).Msg("Failed to reset password")
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Password reset successful")
}

// setSessionCookie writes the session cookie. Secure is unconditional:
// SameSite=None cookies are rejected by browsers without it.
func (h *UserHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
		Path:     "/",
	})
}
