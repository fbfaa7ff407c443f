package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anonto42/inkwell/backend/internal/identity"
	"github.com/anonto42/inkwell/backend/internal/middleware"
	"github.com/anonto42/inkwell/backend/internal/mocks"
	"github.com/anonto42/inkwell/backend/internal/repositories"
	"github.com/anonto42/inkwell/backend/internal/services"
	"github.com/anonto42/inkwell/backend/internal/throttle"
	"github.com/anonto42/inkwell/backend/pkg/config"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type apiTest struct {
	t     *testing.T
	e     *echo.Echo
	posts *mocks.MockPostRepository
}

func newAPITest(t *testing.T) *apiTest {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, repositories.Migrate(db))

	posts := mocks.NewMockPostRepository()
	tokens := identity.NewTokens("router-secret", time.Hour)
	svc := services.NewServices(repositories.NewRepositories(db, posts), services.Options{
		Tokens: tokens,
		Media:  mocks.NewMockMediaStore(),
		Views:  throttle.New(throttle.DefaultCooldown),
	}, zerolog.Nop())

	e := echo.New()
	e.HTTPErrorHandler = config.ErrorHandler(zerolog.Nop())
	SetupRoutes(e, Dependencies{Services: svc, Tokens: tokens, Log: zerolog.Nop()})
	return &apiTest{t: t, e: e, posts: posts}
}

type request struct {
	method  string
	path    string
	body    string
	token   string
	headers map[string]string
}

func (a *apiTest) do(r request) *httptest.ResponseRecorder {
	var req *http.Request
	if r.body != "" {
		req = httptest.NewRequest(r.method, r.path, strings.NewReader(r.body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(r.method, r.path, nil)
	}
	if r.token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+r.token)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

// register creates an account and returns its token and id
func (a *apiTest) register(username string) (string, uint) {
	a.t.Helper()
	rec := a.do(request{method: http.MethodPost, path: "/api/auth/register", body: `{
		"name": "` + username + `",
		"username": "` + username + `",
		"email": "` + username + `@example.com",
		"password": "password123"
	}`})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	var body struct {
		Token string `json:"token"`
		User  struct {
			ID uint `json:"id"`
		} `json:"user"`
	}
	decode(a.t, rec, &body)
	return body.Token, body.User.ID
}

// createPost publishes a post through the API and returns its id and path
func (a *apiTest) createPost(token, title string) (string, string) {
	a.t.Helper()
	rec := a.do(request{method: http.MethodPost, path: "/api/posts", token: token, body: `{
		"title": "` + title + `",
		"content": {"blocks": [{"type": "paragraph", "data": {"text": "body"}}]}
	}`})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	var body struct {
		NewPost struct {
			ID   string `json:"id"`
			Path string `json:"path"`
		} `json:"newPost"`
	}
	decode(a.t, rec, &body)
	return body.NewPost.ID, body.NewPost.Path
}

func TestHealth(t *testing.T) {
	api := newAPITest(t)
	rec := api.do(request{method: http.MethodGet, path: "/health"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestAuthFlow(t *testing.T) {
	api := newAPITest(t)

	rec := api.do(request{method: http.MethodPost, path: "/api/auth/register", body: `{"name":"Ada","username":"ada","email":"ada@example.com","password":"short"}`})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)

	token, _ := api.register("ada")
	assert.NotEmpty(t, token)

	rec = api.do(request{method: http.MethodPost, path: "/api/auth/login", body: `{"email":"ada@example.com","password":"password123"}`})
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.TokenCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, int(time.Hour.Seconds()), cookies[0].MaxAge)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(cookies[0])
	me := httptest.NewRecorder()
	api.e.ServeHTTP(me, req)
	require.Equal(t, http.StatusOK, me.Code)
	assert.Contains(t, me.Body.String(), `"username":"ada"`)
	assert.NotContains(t, me.Body.String(), "password")

	rec = api.do(request{method: http.MethodGet, path: "/api/auth/me"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(request{method: http.MethodPost, path: "/api/auth/login", body: `{"email":"ada@example.com","password":"wrong-password"}`})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(request{method: http.MethodGet, path: "/api/auth/logout"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, rec.Result().Cookies(), 1)
	assert.Equal(t, "", rec.Result().Cookies()[0].Value)

	rec = api.do(request{method: http.MethodPost, path: "/api/auth/firebase-login", body: `{"idToken":"x"}`})
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestCommentEndpoints(t *testing.T) {
	api := newAPITest(t)
	authorToken, _ := api.register("author")
	readerToken, _ := api.register("reader")
	postID, _ := api.createPost(authorToken, "Hello World")

	rec := api.do(request{method: http.MethodPost, path: "/api/comment", body: `{"postID":"` + postID + `","content":"hi"}`})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(request{method: http.MethodPost, path: "/api/comment", token: readerToken, body: `{"postID":"` + postID + `","content":"hi"}`})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"success":true,"message":"Comment added successfully"}`, rec.Body.String())

	rec = api.do(request{method: http.MethodGet, path: "/api/comment"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(request{method: http.MethodGet, path: "/api/comment?postId=" + postID})
	require.Equal(t, http.StatusOK, rec.Code)
	var flat []services.CommentView
	decode(t, rec, &flat)
	require.Len(t, flat, 1)
	rootID := flat[0].ID

	rec = api.do(request{method: http.MethodPost, path: "/api/comment/reply", token: authorToken, body: `{"commentId":` + uintString(rootID) + `,"replyText":"thanks"}`})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"reply"`)

	rec = api.do(request{method: http.MethodPost, path: "/api/comment/reply", token: authorToken, body: `{"commentId":9999,"replyText":"lost"}`})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(request{method: http.MethodPost, path: "/api/comment/like", token: authorToken, body: `{"commentId":` + uintString(rootID) + `}`})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"liked":true}`, rec.Body.String())

	rec = api.do(request{method: http.MethodGet, path: "/api/comment?postId=" + postID + "&nested=true"})
	require.Equal(t, http.StatusOK, rec.Code)
	var nested struct {
		Comments []services.CommentView `json:"comments"`
		Thread   []services.CommentNode `json:"thread"`
	}
	decode(t, rec, &nested)
	assert.Len(t, nested.Comments, 2)
	require.Len(t, nested.Thread, 1)
	assert.Len(t, nested.Thread[0].Replies, 1)
	assert.Equal(t, 1, nested.Thread[0].Count.Likes)

	rec = api.do(request{method: http.MethodDelete, path: "/api/comment?id=" + uintString(rootID), token: authorToken})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Comment not found or doesn't belong to the user")

	rec = api.do(request{method: http.MethodDelete, path: "/api/comment?id=" + uintString(rootID), token: readerToken})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(request{method: http.MethodGet, path: "/api/comment?postId=" + postID})
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestNotificationEndpoints(t *testing.T) {
	api := newAPITest(t)
	authorToken, _ := api.register("author")
	readerToken, _ := api.register("reader")
	postID, _ := api.createPost(authorToken, "Hello")

	api.do(request{method: http.MethodPost, path: "/api/comment", token: authorToken, body: `{"postID":"` + postID + `","content":"self"}`})
	api.do(request{method: http.MethodPost, path: "/api/comment", token: readerToken, body: `{"postID":"` + postID + `","content":"hi"}`})
	rec := api.do(request{method: http.MethodPost, path: "/api/posts/like", token: readerToken, body: `{"postId":"` + postID + `"}`})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"liked":true}`, rec.Body.String())

	rec = api.do(request{method: http.MethodGet, path: "/api/notifications", token: authorToken})
	require.Equal(t, http.StatusOK, rec.Code)
	var list []services.NotificationView
	decode(t, rec, &list)
	require.Len(t, list, 2)
	assert.Equal(t, "reader", list[0].FromUser.Username)

	rec = api.do(request{method: http.MethodGet, path: "/api/notifications/unread-count", token: authorToken})
	assert.JSONEq(t, `{"count":2}`, rec.Body.String())

	rec = api.do(request{method: http.MethodPatch, path: "/api/notifications", token: authorToken, body: `{"notificationId":` + uintString(list[0].ID) + `}`})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(request{method: http.MethodGet, path: "/api/notifications/unread-count", token: authorToken})
	assert.JSONEq(t, `{"count":1}`, rec.Body.String())

	rec = api.do(request{method: http.MethodPatch, path: "/api/notifications", token: authorToken})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(request{method: http.MethodGet, path: "/api/notifications/unread-count", token: authorToken})
	assert.JSONEq(t, `{"count":0}`, rec.Body.String())

	rec = api.do(request{method: http.MethodGet, path: "/api/notifications"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// unliking retracts the like notification
	api.do(request{method: http.MethodPost, path: "/api/posts/like", token: readerToken, body: `{"postId":"` + postID + `"}`})
	rec = api.do(request{method: http.MethodGet, path: "/api/notifications", token: authorToken})
	decode(t, rec, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "comment", string(list[0].Type))
}

func TestFeedAndDetail(t *testing.T) {
	api := newAPITest(t)
	token, _ := api.register("author")
	for _, title := range []string{"One", "Two", "Three", "Four", "Five"} {
		api.createPost(token, title)
	}

	rec := api.do(request{method: http.MethodGet, path: "/api/posts?sort=latest&limit=50"})
	require.Equal(t, http.StatusOK, rec.Code)
	var page services.FeedPage
	decode(t, rec, &page)
	assert.Len(t, page.Posts, 3)
	assert.Equal(t, 1, page.TotalPages)

	rec = api.do(request{method: http.MethodGet, path: "/api/posts?limit=2&page=2"})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &page)
	assert.Len(t, page.Posts, 2)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 2, page.CurrentPage)

	ip := map[string]string{echo.HeaderXForwardedFor: "203.0.113.9"}
	var detail services.PostDetail
	for i := 0; i < 2; i++ {
		rec = api.do(request{method: http.MethodGet, path: "/api/posts/one", headers: ip})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		decode(t, rec, &detail)
		assert.EqualValues(t, 1, detail.Views)
	}
	assert.Equal(t, "author", detail.Author.Username)
	assert.Len(t, detail.Author.Posts, 4)

	rec = api.do(request{method: http.MethodGet, path: "/api/posts/author/two", headers: ip})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &detail)
	assert.Equal(t, "Two", detail.Title)

	rec = api.do(request{method: http.MethodGet, path: "/api/posts/nope"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPostLifecycle(t *testing.T) {
	api := newAPITest(t)
	authorToken, _ := api.register("author")
	readerToken, _ := api.register("reader")
	postID, path := api.createPost(authorToken, "Draft Me")

	rec := api.do(request{method: http.MethodPatch, path: "/api/posts/" + path, token: readerToken, body: `{"title":"stolen"}`})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(request{method: http.MethodPatch, path: "/api/posts/" + path, token: authorToken, body: `{"title":"Renamed","tags":["go"]}`})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"title":"Renamed"`)
	assert.Contains(t, rec.Body.String(), `"path":"draft-me"`)

	rec = api.do(request{method: http.MethodPost, path: "/api/posts/saved", token: readerToken, body: `{"postID":"` + postID + `"}`})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"saved":true`)

	rec = api.do(request{method: http.MethodGet, path: "/api/posts/saved", token: readerToken})
	require.Equal(t, http.StatusOK, rec.Code)
	var saved []services.SavedPostView
	decode(t, rec, &saved)
	require.Len(t, saved, 1)
	assert.Equal(t, "Renamed", saved[0].Post.Title)

	rec = api.do(request{method: http.MethodDelete, path: "/api/posts?id=" + postID, token: readerToken})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(request{method: http.MethodDelete, path: "/api/posts?id=" + postID, token: authorToken})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, api.posts.Posts)

	rec = api.do(request{method: http.MethodGet, path: "/api/posts/saved", token: readerToken})
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestTagsAndFollows(t *testing.T) {
	api := newAPITest(t)
	token, _ := api.register("alice")
	api.register("bob")

	rec := api.do(request{method: http.MethodPost, path: "/api/tags", token: token, body: `{"label":"Go","value":"go"}`})
	assert.Equal(t, http.StatusCreated, rec.Code)
	rec = api.do(request{method: http.MethodPost, path: "/api/tags", token: token, body: `{"label":"Golang","value":"go"}`})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"label":"Go"`)
	rec = api.do(request{method: http.MethodPost, path: "/api/tags", token: token, body: `{"label":"x"}`})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(request{method: http.MethodGet, path: "/api/tags"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"postCount":0`)

	rec = api.do(request{method: http.MethodPost, path: "/api/users/bob/follow", token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"following":true}`, rec.Body.String())
	rec = api.do(request{method: http.MethodPost, path: "/api/users/alice/follow", token: token})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(request{method: http.MethodGet, path: "/api/users/bob"})
	require.Equal(t, http.StatusOK, rec.Code)
	var profile services.Profile
	decode(t, rec, &profile)
	assert.EqualValues(t, 1, profile.FollowersCount)
	assert.Equal(t, "alice", profile.Followers[0].Username)

	rec = api.do(request{method: http.MethodGet, path: "/api/profile", token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"alice"`)

	rec = api.do(request{method: http.MethodPut, path: "/api/profile", token: token, body: `{"bio":"gopher"}`})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"bio":"gopher"`)
}

func uintString(v uint) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func TestPostTitledLikeAFixedRouteStaysReachable(t *testing.T) {
	api := newAPITest(t)
	token, _ := api.register("author")

	_, path := api.createPost(token, "Saved")
	require.Equal(t, "saved-2", path)

	rec := api.do(request{method: http.MethodGet, path: "/api/posts/" + path})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var detail services.PostDetail
	decode(t, rec, &detail)
	assert.Equal(t, "Saved", detail.Title)
}
