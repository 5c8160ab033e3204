package controllers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authData struct {
	Token string `json:"token"`
	User  struct {
		Username    string `json:"username"`
		DisplayName string `json:"display_name"`
	} `json:"user"`
}

func TestRegisterAndLogin(t *testing.T) {
	db := testDB(t)
	r := newTestRouter(t, db)

	w := doRequest(r, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "newcomer",
		"password": "correct horse",
	})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	var data authData
	decodeData(t, w, &data)
	assert.NotEmpty(t, data.Token)
	assert.Equal(t, "newcomer", data.User.Username)

	w = doRequest(r, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "newcomer",
		"password": "correct horse",
	})
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &data)
	assert.NotEmpty(t, data.Token)

	// The issued token works on protected routes.
	w = doRequest(r, http.MethodGet, "/api/v1/auth/me", data.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	db := testDB(t)
	r := newTestRouter(t, db)

	createUser(t, db, "taken")

	w := doRequest(r, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "taken",
		"password": "correct horse",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterValidatesInput(t *testing.T) {
	db := testDB(t)
	r := newTestRouter(t, db)

	cases := []map[string]string{
		{"username": "x", "password": "long enough pw"},
		{"username": "has spaces", "password": "long enough pw"},
		{"username": "validname", "password": "short"},
		{"username": "validname"},
	}
	for _, body := range cases {
		w := doRequest(r, http.MethodPost, "/api/v1/auth/register", "", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body: %v", body)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	db := testDB(t)
	r := newTestRouter(t, db)

	w := doRequest(r, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "someone",
		"password": "right password",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "someone",
		"password": "wrong password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(r, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "nobody",
		"password": "whatever pw",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	db := testDB(t)
	r := newTestRouter(t, db)

	_, token := createUser(t, db, "leaver")

	w := doRequest(r, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateProfile(t *testing.T) {
	db := testDB(t)
	r := newTestRouter(t, db)

	_, token := createUser(t, db, "editor")

	w := doRequest(r, http.MethodPut, "/api/v1/auth/me", token, map[string]string{
		"display_name": "The Editor",
		"bio":          "writes things",
	})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	var data struct {
		User struct {
			DisplayName string `json:"display_name"`
			Bio         string `json:"bio"`
		} `json:"user"`
	}
	decodeData(t, w, &data)
	assert.Equal(t, "The Editor", data.User.DisplayName)
	assert.Equal(t, "writes things", data.User.Bio)
}

func TestCreateGroupRequiresAdmin(t *testing.T) {
	db := testDB(t)
	r := newTestRouter(t, db)

	_, userToken := createUser(t, db, "regular")
	_, adminToken := createUser(t, db, "admin")

	body := map[string]string{"title": "New Group", "slug": "new-group"}

	w := doRequest(r, http.MethodPost, "/api/v1/groups", userToken, body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(r, http.MethodPost, "/api/v1/groups", adminToken, body)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	// Duplicate slugs are rejected.
	w = doRequest(r, http.MethodPost, "/api/v1/groups", adminToken, body)
	assert.Equal(t, http.StatusConflict, w.Code)
}
