package handlers

import (
	"log"
	"net/http"

	"finax-server/src/models"
	"finax-server/src/services"
)

// forgotPasswordMessage is the same whether or not the email is registered.
const forgotPasswordMessage = "if the email is registered, a reset link has been sent"

func Register(authService *services.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.RegisterRequest
		if err := decodeJSON(w, r, &req); err != nil {
			log.Printf("ERROR: Failed to decode register request body: %v", err)
			writeError(w, r, err)
			return
		}

		user, err := authService.Register(r.Context(), req)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, models.UserResponse{User: user})
	}
}

func Login(authService *services.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		if err := decodeJSON(w, r, &req); err != nil {
			log.Printf("ERROR: Failed to decode login request body: %v", err)
			writeError(w, r, err)
			return
		}

		user, token, err := authService.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, models.LoginResponse{User: user, Token: token})
	}
}

func ForgotPassword(authService *services.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.ForgotPasswordRequest
		if err := decodeJSON(w, r, &req); err != nil {
			log.Printf("ERROR: Failed to decode forgot password request body: %v", err)
			writeError(w, r, err)
			return
		}

		if err := authService.ForgotPassword(r.Context(), req.Email); err != nil {
			log.Printf("ERROR: Forgot password failed: %v", err)
		}

		writeJSON(w, http.StatusOK, models.MessageResponse{Message: forgotPasswordMessage})
	}
}

func ResetPassword(authService *services.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.ResetPasswordRequest
		if err := decodeJSON(w, r, &req); err != nil {
			log.Printf("ERROR: Failed to decode reset password request body: %v", err)
			writeError(w, r, err)
			return
		}

		if err := authService.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, models.MessageResponse{Message: "password has been reset"})
	}
}
