package controllers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hvostov/inkline/models"
)

func TestGetStatsCountsEntities(t *testing.T) {
	db := testDB(t)
	r := newTestRouter(t, db)

	author, _ := createUser(t, db, "author")
	createUser(t, db, "reader")
	createGroup(t, db, "Tech", "tech")
	post := createPost(t, db, author, nil, "hello", time.Now())
	require.NoError(t, db.Create(&models.Comment{PostID: post.ID, UserID: author.ID, Text: "self reply"}).Error)

	var data struct {
		Users    int64 `json:"users"`
		Posts    int64 `json:"posts"`
		Comments int64 `json:"comments"`
		Groups   int64 `json:"groups"`
	}
	w := doRequest(r, http.MethodGet, "/api/v1/stats", "", nil)
	decodeData(t, w, &data)

	assert.Equal(t, int64(2), data.Users)
	assert.Equal(t, int64(1), data.Posts)
	assert.Equal(t, int64(1), data.Comments)
	assert.Equal(t, int64(1), data.Groups)
}

func TestGetPostStatsCountsViewsAndComments(t *testing.T) {
	db := testDB(t)
	r := newTestRouter(t, db)

	author, _ := createUser(t, db, "author")
	post := createPost(t, db, author, nil, "hello", time.Now())
	require.NoError(t, db.Create(&models.Comment{PostID: post.ID, UserID: author.ID, Text: "one"}).Error)
	require.NoError(t, db.Create(&models.Comment{PostID: post.ID, UserID: author.ID, Text: "two"}).Error)

	// Each detail read bumps the page view counter.
	for i := 0; i < 3; i++ {
		w := doRequest(r, http.MethodGet, "/api/v1/posts/"+itoa(post.ID), "", nil)
		require.Equal(t, http.StatusOK, w.Code)
	}

	var data struct {
		Views    int64 `json:"views"`
		Comments int64 `json:"comments"`
	}
	w := doRequest(r, http.MethodGet, "/api/v1/posts/"+itoa(post.ID)+"/stats", "", nil)
	decodeData(t, w, &data)

	assert.Equal(t, int64(3), data.Views)
	assert.Equal(t, int64(2), data.Comments)
}

func TestGetPostStatsUnknownPostIs404(t *testing.T) {
	db := testDB(t)
	r := newTestRouter(t, db)

	w := doRequest(r, http.MethodGet, "/api/v1/posts/999999/stats", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
