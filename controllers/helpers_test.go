package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hvostov/inkline/models"
	"github.com/hvostov/inkline/routes"
	"github.com/hvostov/inkline/utils"
)

var mr *miniredis.Miniredis

func TestMain(m *testing.M) {
	var err error
	mr, err = miniredis.Run()
	if err != nil {
		panic(err)
	}

	tmp := os.TempDir()
	// Config and the Redis singleton read the environment once, so it must
	// be in place before any test triggers a load.
	os.Setenv("JWT_SECRET", "test-secret")
	os.Setenv("REDIS_HOST", mr.Host())
	os.Setenv("REDIS_PORT", mr.Port())
	os.Setenv("GIN_MODE", "test")
	os.Setenv("GIN_PATH", filepath.Join(tmp, "inkline_test_access.log"))
	os.Setenv("MEDIA_ROOT", filepath.Join(tmp, "inkline_test_media"))
	os.Setenv("RATE_LIMIT_PER_MINUTE", "100000")
	os.Setenv("ADMIN_USERNAMES", "admin")

	gin.SetMode(gin.TestMode)

	code := m.Run()
	mr.Close()
	os.Exit(code)
}

var dbSeq int64

// testDB opens an isolated in-memory database with the full schema.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := fmt.Sprintf("file:test_%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
	db, err := gorm.Open(sqlite.Open(name), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Post{},
		&models.Comment{},
		&models.Follow{},
		&models.PageView{},
		&models.UploadedImage{},
	))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Shared-cache memory databases vanish when the last connection closes.
	sqlDB.SetMaxIdleConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	return db
}

func newTestRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()
	return routes.SetupRouter(db)
}

func createUser(t *testing.T, db *gorm.DB, username string) (models.User, string) {
	t.Helper()

	user := models.User{Username: username, DisplayName: username}
	require.NoError(t, db.Create(&user).Error)

	token, err := utils.IssueSessionToken(user.ID, user.Username)
	require.NoError(t, err)

	return user, token
}

func createGroup(t *testing.T, db *gorm.DB, title, slug string) models.Group {
	t.Helper()

	group := models.Group{Title: title, Slug: slug}
	require.NoError(t, db.Create(&group).Error)
	return group
}

// createPost inserts a post with an explicit creation time so ordering
// assertions are deterministic.
func createPost(t *testing.T, db *gorm.DB, author models.User, groupID *uint, text string, createdAt time.Time) models.Post {
	t.Helper()

	post := models.Post{
		UserID:    author.ID,
		GroupID:   groupID,
		Text:      text,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(&post).Error)
	return post
}

func itoa(id uint) string {
	return fmt.Sprintf("%d", id)
}

func doRequest(r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	return env
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()

	env := decodeEnvelope(t, w)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, out))
}
