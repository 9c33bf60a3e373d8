package http

import (
	"encoding/json"
	"net/http"
)

// Response is the wire envelope every endpoint speaks: a human-readable
// message, a machine-readable code, and optional structured extras.
type Response struct {
	Message  string `json:"message"`
	Code     string `json:"code,omitempty"`
	Details  any    `json:"details,omitempty"`
	Required any    `json:"required,omitempty"`
	Params   any    `json:"params,omitempty"`
}

// WriteJSON writes an arbitrary payload with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	// Encoding errors are logged upstream, never exposed to the client.
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteMessage writes a Response with just a message and code.
func WriteMessage(w http.ResponseWriter, statusCode int, message, code string) {
	WriteJSON(w, statusCode, Response{Message: message, Code: code})
}

// Common terminal responses.

func WriteInvalidCredentials(w http.ResponseWriter) {
	WriteMessage(w, http.StatusUnauthorized, "Invalid Username/Email or Password.", "INVALID_CREDENTIALS")
}

func WriteAccountLocked(w http.ResponseWriter, remainingMinutes int) {
	WriteJSON(w, http.StatusForbidden, Response{
		Message:  "Account temporarily locked.",
		Code:     "ACCOUNT_LOCKED",
		Required: map[string]int{"remainingTime": remainingMinutes},
	})
}

func WriteConfirmSignUp(w http.ResponseWriter, username, email string) {
	WriteJSON(w, http.StatusForbidden, Response{
		Message: "Email verification required. Confirmation code has been resent.",
		Code:    "CONFIRM_SIGN_UP",
		Params:  map[string]string{"username": username, "email": email},
	})
}

func WriteRateLimited(w http.ResponseWriter) {
	WriteMessage(w, http.StatusTooManyRequests, "Too many attempts. Please try again later.", "RATE_LIMIT_EXCEEDED")
}

func WriteServerError(w http.ResponseWriter) {
	WriteMessage(w, http.StatusInternalServerError, "Internal Server Error", "SERVER_ERROR")
}

func WriteDatabaseError(w http.ResponseWriter) {
	WriteMessage(w, http.StatusInternalServerError, "Database error occurred. Please try again later.", "DATABASE_ERROR")
}

func WriteBadRequest(w http.ResponseWriter, message, code string) {
	WriteMessage(w, http.StatusBadRequest, message, code)
}
