package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/raphaelgruber/sccse-chat/internal/apperr"
)

// =============================================================================
// TYPES (matching the server's JSON contract)
// =============================================================================

// ID is a user identifier. The server may encode it as a JSON string or number.
type ID string

// UnmarshalJSON accepts "42", 42 and null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("user id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse carries the server's confirmation message.
type RegisterResponse struct {
	Message string `json:"message"`
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	UserID ID     `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
}

// ChatRequest is the body of POST /chat. UserID and Name are omitted when absent.
type ChatRequest struct {
	UserID  string `json:"user_id,omitempty"`
	Name    string `json:"name,omitempty"`
	Message string `json:"message"`
}

// ChatResponse holds either a reply or an error payload; Reply takes precedence.
type ChatResponse struct {
	Reply string `json:"reply,omitempty"`
	Error string `json:"error,omitempty"`
	// Status is the HTTP status the response arrived with.
	Status int `json:"-"`
}

// errorBody is the shape of every error payload the server sends.
type errorBody struct {
	Error string `json:"error"`
}

// =============================================================================
// AUTH OPERATIONS
// =============================================================================

// Register creates an account. A non-2xx status returns a KindAuth error whose
// Message is the server's error text (possibly empty).
func (c *Client) Register(ctx context.Context, in RegisterRequest) (*RegisterResponse, error) {
	var raw struct {
		RegisterResponse
		errorBody
	}
	status, err := c.do(ctx, "register", http.MethodPost, "/register", "", in, &raw)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, apperr.Auth("register", raw.Error, fmt.Errorf("status %d", status))
	}
	return &raw.RegisterResponse, nil
}

// Login authenticates a user. Only HTTP 200 with a user id counts as success.
func (c *Client) Login(ctx context.Context, in LoginRequest) (*LoginResponse, error) {
	var raw struct {
		LoginResponse
		errorBody
	}
	status, err := c.do(ctx, "login", http.MethodPost, "/login", "", in, &raw)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apperr.Auth("login", raw.Error, fmt.Errorf("status %d", status))
	}
	if raw.UserID == "" {
		return nil, apperr.Auth("login", "", fmt.Errorf("response missing user_id"))
	}
	return &raw.LoginResponse, nil
}

// =============================================================================
// CHAT OPERATIONS
// =============================================================================

// Chat sends one message and returns the decoded reply payload whatever the
// status: the server reports failures as {"error": ...} bodies, which are
// displayed like replies. requestID may be empty.
func (c *Client) Chat(ctx context.Context, requestID string, in ChatRequest) (*ChatResponse, error) {
	var out ChatResponse
	status, err := c.do(ctx, "chat", http.MethodPost, "/chat", requestID, in, &out)
	if err != nil {
		return nil, err
	}
	out.Status = status
	return &out, nil
}

// =============================================================================
// HEALTH
// =============================================================================

// Ping calls GET / and returns the server's welcome message.
func (c *Client) Ping(ctx context.Context) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	status, err := c.do(ctx, "ping", http.MethodGet, "/", "", nil, &out)
	if err != nil {
		return "", err
	}
	if !isSuccess(status) {
		return "", apperr.Service("ping", fmt.Sprintf("server returned status %d", status))
	}
	return out.Message, nil
}
