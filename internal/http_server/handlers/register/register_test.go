package register

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"jobportal/internal/auth"
	"jobportal/internal/config"
	"jobportal/internal/http_server/cookies"
	"jobportal/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRegisterer struct {
	calls int
	in    auth.RegisterInput
	err   error
}

func (f *fakeRegisterer) RegisterNewUser(_ context.Context, in auth.RegisterInput) (models.User, models.TokenPair, error) {
	f.calls++
	f.in = in

	if f.err != nil {
		return models.User{}, models.TokenPair{}, f.err
	}

	return models.User{ID: "u-1", FullName: in.FullName, Email: in.Email, Role: in.Role},
		models.TokenPair{AccessToken: "a", RefreshToken: "r"}, nil
}

func newHandler(reg UserRegisterer) http.HandlerFunc {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cm := cookies.New(config.Cookies{SameSite: "lax"}, time.Minute, time.Hour)

	return New(log, validator.New(), reg, cm)
}

func multipartBody(t *testing.T, fileField, fileType string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := map[string]string{
		"fullName":    "Ada Lovelace",
		"email":       "Ada@Example.com",
		"password":    "secret123",
		"phoneNumber": "5550001111",
		"role":        "student",
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}

	if fileField != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+fileField+`"; filename="f.bin"`)
		h.Set("Content-Type", fileType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte("payload"))
		require.NoError(t, err)
	}

	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func TestRegister_JSON(t *testing.T) {
	reg := &fakeRegisterer{}

	body := `{"fullName":" Ada ","email":"ADA@example.com","password":"secret123","phoneNumber":"5550001111","role":"recruiter"}`
	req := httptest.NewRequest(http.MethodPost, "/user/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	newHandler(reg)(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Ada", reg.in.FullName)
	assert.Equal(t, "ada@example.com", reg.in.Email)
	assert.Equal(t, models.Role("recruiter"), reg.in.Role)

	var got Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.True(t, got.Success)
	assert.Equal(t, "a", got.AccessToken)
	assert.Len(t, rec.Result().Cookies(), 2)
}

func TestRegister_MultipartWithImage(t *testing.T) {
	reg := &fakeRegisterer{}

	body, contentType := multipartBody(t, "avatar", "image/png")
	req := httptest.NewRequest(http.MethodPost, "/user/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	newHandler(reg)(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, reg.in.Avatar)
	assert.Equal(t, "image/png", reg.in.Avatar.ContentType)
	assert.Nil(t, reg.in.CoverImage)
	assert.Equal(t, "ada@example.com", reg.in.Email)
}

func TestRegister_RejectsNonImageUpload(t *testing.T) {
	reg := &fakeRegisterer{}

	body, contentType := multipartBody(t, "coverImage", "application/pdf")
	req := httptest.NewRequest(http.MethodPost, "/user/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	newHandler(reg)(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "coverImage must be an image")
	assert.Zero(t, reg.calls)
}

func TestRegister_ValidationFails(t *testing.T) {
	reg := &fakeRegisterer{}

	body := `{"fullName":"Ada","email":"not-an-email","password":"x","phoneNumber":"abc","role":"admin"}`
	req := httptest.NewRequest(http.MethodPost, "/user/register", strings.NewReader(body))
	rec := httptest.NewRecorder()

	newHandler(reg)(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, reg.calls)
}

func TestRegister_DuplicateIdentity(t *testing.T) {
	reg := &fakeRegisterer{err: auth.ErrEmailTaken}

	body := `{"fullName":"Ada","email":"ada@example.com","password":"secret123","phoneNumber":"5550001111","role":"student"}`
	req := httptest.NewRequest(http.MethodPost, "/user/register", strings.NewReader(body))
	rec := httptest.NewRecorder()

	newHandler(reg)(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}
