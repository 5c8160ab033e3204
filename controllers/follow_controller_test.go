package controllers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hvostov/inkline/models"
)

func TestFollowIsIdempotent(t *testing.T) {
	db := testDB(t)
	r := newTestRouter(t, db)

	author, _ := createUser(t, db, "author")
	viewer, viewerToken := createUser(t, db, "viewer")

	for i := 0; i < 3; i++ {
		w := doRequest(r, http.MethodPost, "/api/v1/users/author/follow", viewerToken, nil)
		require.Equal(t, http.StatusOK, w.Code, "attempt %d body: %s", i, w.Body.String())
	}

	var n int64
	require.NoError(t, db.Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", viewer.ID, author.ID).
		Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestSelfFollowIsRejectedQuietly(t *testing.T) {
	db := testDB(t)
	r := newTestRouter(t, db)

	user, token := createUser(t, db, "loner")

	w := doRequest(r, http.MethodPost, "/api/v1/users/loner/follow", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Following bool `json:"following"`
	}
	decodeData(t, w, &data)
	assert.False(t, data.Following)

	var n int64
	require.NoError(t, db.Model(&models.Follow{}).
		Where("user_id = ?", user.ID).
		Count(&n).Error)
	assert.Equal(t, int64(0), n)
}

func TestSelfFollowBlockedByStorageConstraint(t *testing.T) {
	db := testDB(t)

	user, _ := createUser(t, db, "loner")

	// Even code paths that skip the handler cannot write a self edge.
	err := db.Create(&models.Follow{UserID: user.ID, AuthorID: user.ID}).Error
	assert.Error(t, err)
}

func TestUnfollowIsIdempotent(t *testing.T) {
	db := testDB(t)
	r := newTestRouter(t, db)

	author, _ := createUser(t, db, "author")
	viewer, viewerToken := createUser(t, db, "viewer")

	w := doRequest(r, http.MethodPost, "/api/v1/users/author/follow", viewerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	for i := 0; i < 2; i++ {
		w = doRequest(r, http.MethodDelete, "/api/v1/users/author/follow", viewerToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
	}

	var n int64
	require.NoError(t, db.Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", viewer.ID, author.ID).
		Count(&n).Error)
	assert.Equal(t, int64(0), n)
}

func TestFollowRequiresAuth(t *testing.T) {
	db := testDB(t)
	r := newTestRouter(t, db)

	createUser(t, db, "author")

	w := doRequest(r, http.MethodPost, "/api/v1/users/author/follow", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFollowUnknownUserIs404(t *testing.T) {
	db := testDB(t)
	r := newTestRouter(t, db)

	_, token := createUser(t, db, "viewer")

	w := doRequest(r, http.MethodPost, "/api/v1/users/ghost/follow", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
