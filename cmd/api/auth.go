package main

import (
	"crypto/subtle"
	"net/http"
	"os"
	"strings"
)

// requireAPIKey validates the Bearer token in the Authorization header
// before allowing a request through.
func requireAPIKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		expectedKey := os.Getenv("API_SECRET_KEY")

		// Lock the server down if the operator forgot to set the key;
		// a 500 makes the misconfiguration obvious during deployment.
		if expectedKey == "" {
			http.Error(w, "Server configuration error: API_SECRET_KEY not set", http.StatusInternalServerError)
			return
		}

		authHeader := r.Header.Get("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		// Constant-time compare so response latency leaks nothing about
		// how much of the guess was correct.
		if subtle.ConstantTimeCompare([]byte(token), []byte(expectedKey)) != 1 {
			http.Error(w, `{"error": "Unauthorized: Invalid or missing API Key"}`, http.StatusUnauthorized)
			return
		}

		next(w, r)
	}
}
