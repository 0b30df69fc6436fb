package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"bookstore/internal/auth"
	"bookstore/internal/user"
)

// TestSecret signs tokens in tests.
const TestSecret = "test-secret"

// TestUser is a plain (non-staff) account for testing.
var TestUser = user.User{
	ID:        1,
	Username:  "test_username",
	FirstName: "Test",
	LastName:  "User",
	CreatedAt: time.Now(),
	UpdatedAt: time.Now(),
}

// TestStaffUser may mutate any book.
var TestStaffUser = user.User{
	ID:        2,
	Username:  "test_staff",
	FirstName: "Staff",
	LastName:  "User",
	IsStaff:   true,
	CreatedAt: time.Now(),
	UpdatedAt: time.Now(),
}

// GenerateTestToken generates a signed access token for testing.
func GenerateTestToken(secret string, userID int64, staff bool) string {
	token, _, _ := auth.GenerateToken(secret, userID, staff, time.Hour)
	return token
}

// GenerateExpiredToken generates an already expired token for testing.
func GenerateExpiredToken(secret string, userID int64, staff bool) string {
	c := auth.Claims{
		Sub:   "1",
		Staff: staff,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	token, _ := t.SignedString([]byte(secret))
	return token
}

// NewRequest creates a new HTTP request with an optional JSON body.
func NewRequest(method, path string, body interface{}) *http.Request {
	if body == nil {
		return httptest.NewRequest(method, path, nil)
	}
	bodyBytes, _ := json.Marshal(body)
	r := httptest.NewRequest(method, path, bytes.NewReader(bodyBytes))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// NewRequestWithAuth creates a new HTTP request with a bearer token attached.
func NewRequestWithAuth(method, path string, body interface{}, token string) *http.Request {
	r := NewRequest(method, path, body)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return r
}

// RecordResponse holds a decoded HTTP response for assertions.
type RecordResponse struct {
	Code   int
	Header http.Header
	Body   map[string]interface{}
}

// RecordHTTPResponse decodes a recorded response body as JSON.
func RecordHTTPResponse(w *httptest.ResponseRecorder) RecordResponse {
	result := w.Result()
	defer result.Body.Close()

	bodyBytes, _ := io.ReadAll(result.Body)

	var bodyMap map[string]interface{}
	if len(bodyBytes) > 0 {
		_ = json.NewDecoder(bytes.NewReader(bodyBytes)).Decode(&bodyMap)
	}

	return RecordResponse{
		Code:   result.StatusCode,
		Header: result.Header,
		Body:   bodyMap,
	}
}
