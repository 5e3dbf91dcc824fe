package helpers

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/forgo/hearth/api/internal/model"
	"github.com/forgo/hearth/api/pkg/jwt"
	"github.com/stretchr/testify/require"
)

// TestIssuer is the issuer of tokens from NewJWTService
const TestIssuer = "hearth-test"

// NewJWTService creates a JWT service with an in-memory key
func NewJWTService(t *testing.T) *jwt.Service {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err, "helpers: generate RSA key")
	return jwt.NewTestService(key, TestIssuer, time.Hour)
}

// Token signs an access token for user
func Token(t *testing.T, svc *jwt.Service, user *model.User) string {
	t.Helper()

	token, err := svc.Sign(user.ID, user.Email)
	require.NoError(t, err, "helpers: sign token")
	return token
}

// RequestBuilder constructs a request and serves it
type RequestBuilder struct {
	t       *testing.T
	method  string
	path    string
	body    io.Reader
	headers http.Header
}

// NewRequest starts a request
func NewRequest(t *testing.T, method, path string) *RequestBuilder {
	return &RequestBuilder{t: t, method: method, path: path, headers: http.Header{}}
}

// WithJSON sets a JSON body
func (rb *RequestBuilder) WithJSON(body any) *RequestBuilder {
	rb.t.Helper()
	data, err := json.Marshal(body)
	require.NoError(rb.t, err)
	rb.body = bytes.NewReader(data)
	rb.headers.Set("Content-Type", "application/json")
	return rb
}

// WithBytes sets a raw body
func (rb *RequestBuilder) WithBytes(data []byte, contentType string) *RequestBuilder {
	rb.body = bytes.NewReader(data)
	rb.headers.Set("Content-Type", contentType)
	return rb
}

// WithToken adds a bearer token
func (rb *RequestBuilder) WithToken(token string) *RequestBuilder {
	rb.headers.Set("Authorization", "Bearer "+token)
	return rb
}

// Do serves the request and returns the recorded response
func (rb *RequestBuilder) Do(h http.Handler) *httptest.ResponseRecorder {
	req := httptest.NewRequest(rb.method, rb.path, rb.body)
	for k, v := range rb.headers {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// AssertStatus checks the status code, printing the body on mismatch
func AssertStatus(t *testing.T, rec *httptest.ResponseRecorder, expected int) {
	t.Helper()
	require.Equal(t, expected, rec.Code, "body: %s", rec.Body.String())
}

// AssertProblem checks an RFC 9457 response
func AssertProblem(t *testing.T, rec *httptest.ResponseRecorder, status int, code model.ErrorCode) {
	t.Helper()
	AssertStatus(t, rec, status)
	require.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	var pd model.ProblemDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pd))
	require.Equal(t, status, pd.Status)
	require.Equal(t, code, pd.Code)
}

// Data decodes the "data" member of a response envelope
func Data[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var envelope struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), "body: %s", rec.Body.String())
	return envelope.Data
}

// Ptr returns a pointer to v
func Ptr[T any](v T) *T {
	return &v
}
