// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package remoteuser

import (
	"fmt"
	"time"
)

// User is a user account as returned by the users API.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// Activity summarizes the events recorded for a user within a time window.
type Activity struct {
	UserID string `json:"user_id"`
	Window string `json:"window"`
	Events int    `json:"events"`
}

// Stats is passed to the generate_statistics callback.
type Stats struct {
	Username string
	Latency  time.Duration
	Events   int
}

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// StatusError is returned by the Client for any non 2xx response.
type StatusError struct {
	Code    int
	Message string
}

// Error implements the [error] interface.
func (e StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d: %s", e.Code, e.Message)
}
