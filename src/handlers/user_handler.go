package handlers

import (
	"log"
	"net/http"

	"finax-server/src/middleware"
	"finax-server/src/models"
	"finax-server/src/services"
)

func UpdateProfile(authService *services.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		var req models.UpdateProfileRequest
		if err := decodeJSON(w, r, &req); err != nil {
			log.Printf("ERROR: Failed to decode update profile request body - User: %s: %v", userID, err)
			writeError(w, r, err)
			return
		}

		user, err := authService.UpdateProfile(r.Context(), userID, req)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, user)
	}
}

func UpdateAvatar(authService *services.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		var req models.UpdateAvatarRequest
		if err := decodeJSON(w, r, &req); err != nil {
			log.Printf("ERROR: Failed to decode update avatar request body - User: %s: %v", userID, err)
			writeError(w, r, err)
			return
		}

		user, err := authService.UpdateAvatar(r.Context(), userID, req.AvatarURL)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, user)
	}
}
