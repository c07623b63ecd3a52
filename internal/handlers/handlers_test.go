package handlers_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"Newsroom/internal/auth"
	dom "Newsroom/internal/domain"
	"Newsroom/internal/flash"
	"Newsroom/internal/handlers"
	"Newsroom/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fakes -----------------------------------------------------------------

type fakeSessions struct {
	userIDs map[string]int64
	next    int
}

func (f *fakeSessions) Create(ctx context.Context, userID int64) (string, error) {
	f.next++
	id := fmt.Sprintf("sess-%d", f.next)
	f.userIDs[id] = userID
	return id, nil
}

func (f *fakeSessions) GetUserID(ctx context.Context, id string) (int64, error) {
	userID, ok := f.userIDs[id]
	if !ok {
		return 0, auth.ErrNoSession
	}
	return userID, nil
}

func (f *fakeSessions) Renew(ctx context.Context, id string) error { return nil }

func (f *fakeSessions) Delete(ctx context.Context, id string) error {
	delete(f.userIDs, id)
	return nil
}

type fakeUserRepo struct {
	user dom.User
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (dom.User, error) {
	if username != f.user.Username {
		return dom.User{}, pgx.ErrNoRows
	}
	return f.user, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (dom.User, error) {
	if id != f.user.ID {
		return dom.User{}, pgx.ErrNoRows
	}
	return f.user, nil
}

func (f *fakeUserRepo) UpdatePasswordHash(ctx context.Context, id int64, passwordHash string) error {
	f.user.PasswordHash = passwordHash
	return nil
}

type fakeSubscriberRepo struct {
	byToken   map[string]dom.Subscriber
	confirmed []string
}

func (f *fakeSubscriberRepo) Create(ctx context.Context, s dom.Subscriber) (dom.Subscriber, error) {
	f.byToken[s.ConfirmationToken] = s
	return s, nil
}

func (f *fakeSubscriberRepo) GetByToken(ctx context.Context, token string) (dom.Subscriber, error) {
	s, ok := f.byToken[token]
	if !ok {
		return dom.Subscriber{}, pgx.ErrNoRows
	}
	return s, nil
}

func (f *fakeSubscriberRepo) Confirm(ctx context.Context, token string) error {
	s := f.byToken[token]
	s.Status = dom.StatusConfirmed
	f.byToken[token] = s
	f.confirmed = append(f.confirmed, s.Email)
	return nil
}

func (f *fakeSubscriberRepo) ListConfirmedEmails(ctx context.Context) ([]string, error) {
	return f.confirmed, nil
}

type fakeMailer struct {
	sent []string // recipients, in order
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, text, html string) error {
	f.sent = append(f.sent, to)
	return nil
}

// ---- test harness ----------------------------------------------------------

type testApp struct {
	t        *testing.T
	server   *httptest.Server
	client   *http.Client
	sessions *fakeSessions
	users    *fakeUserRepo
	subs     *fakeSubscriberRepo
	mailer   *fakeMailer
	password string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	const password = "everythinghastostartsomewhere"
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	users := &fakeUserRepo{user: dom.User{ID: 1, Username: "admin", PasswordHash: hash}}
	sessions := &fakeSessions{userIDs: map[string]int64{}}
	subs := &fakeSubscriberRepo{byToken: map[string]dom.Subscriber{}}
	m := &fakeMailer{}
	signer := flash.NewSigner("test-secret")

	authSvc := service.NewAuthService(users)
	subSvc := service.NewSubscriptionService(subs, m, nil, "http://localhost")
	newsSvc := service.NewNewsletterService(subs, nil, m)

	authHandler := handlers.NewAuthHandler(sessions, authSvc, signer, 3600)
	newsHandler := handlers.NewNewsletterHandler(subSvc, newsSvc, signer)

	r := gin.New()
	r.GET("/login", authHandler.LoginForm)
	r.POST("/login", authHandler.Login)
	r.POST("/subscriptions", newsHandler.Subscribe)
	r.GET("/subscriptions/confirm", newsHandler.Confirm)
	admin := r.Group("/admin", auth.RequireSession(sessions))
	admin.GET("/dashboard", authHandler.Dashboard)
	admin.GET("/password", authHandler.ChangePasswordForm)
	admin.POST("/password", authHandler.ChangePassword)
	admin.POST("/logout", authHandler.Logout)
	admin.GET("/newsletters", newsHandler.PublishForm)
	admin.POST("/newsletters", newsHandler.Publish)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &testApp{
		t: t, server: server, client: client,
		sessions: sessions, users: users, subs: subs, mailer: m,
		password: password,
	}
}

func (a *testApp) get(path string) *http.Response {
	a.t.Helper()
	res, err := a.client.Get(a.server.URL + path)
	require.NoError(a.t, err)
	return res
}

func (a *testApp) postForm(path string, form url.Values) *http.Response {
	a.t.Helper()
	res, err := a.client.PostForm(a.server.URL+path, form)
	require.NoError(a.t, err)
	return res
}

func (a *testApp) login(username, password string) *http.Response {
	return a.postForm("/login", url.Values{"username": {username}, "password": {password}})
}

func (a *testApp) html(res *http.Response) string {
	a.t.Helper()
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	require.NoError(a.t, err)
	return string(b)
}

func assertRedirectTo(t *testing.T, res *http.Response, location string) {
	t.Helper()
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, location, res.Header.Get("Location"))
}

// ---- tests -----------------------------------------------------------------

func TestAdminRoutesRedirectAnonymousToLogin(t *testing.T) {
	app := newTestApp(t)
	app.subs.confirmed = []string{"confirmed@example.com"}

	assertRedirectTo(t, app.get("/admin/dashboard"), "/login")
	assertRedirectTo(t, app.get("/admin/password"), "/login")
	assertRedirectTo(t, app.get("/admin/newsletters"), "/login")
	assertRedirectTo(t, app.postForm("/admin/password", url.Values{
		"current_password":   {"x"},
		"new_password":       {"y"},
		"new_password_check": {"y"},
	}), "/login")
	assertRedirectTo(t, app.postForm("/admin/newsletters", url.Values{
		"title":        {"Title"},
		"text_content": {"Body"},
	}), "/login")

	assert.Empty(t, app.mailer.sent, "rejected requests must have no side effects")
}

func TestLoginFailureShowsFlashExactlyOnce(t *testing.T) {
	app := newTestApp(t)

	res := app.login("random-username", "random-password")
	assertRedirectTo(t, res, "/login")

	// Follow the redirect: the flash is rendered.
	page := app.html(app.get("/login"))
	assert.Contains(t, page, "<p><i>Authentication failed</i></p>")

	// Reload: the flash is gone.
	page = app.html(app.get("/login"))
	assert.NotContains(t, page, "Authentication failed")
}

func TestLoginSuccessLandsOnDashboard(t *testing.T) {
	app := newTestApp(t)

	res := app.login("admin", app.password)
	assertRedirectTo(t, res, "/admin/dashboard")

	page := app.html(app.get("/admin/dashboard"))
	assert.Contains(t, page, "Welcome admin")
}

func TestLoginMintsFreshSessionEachTime(t *testing.T) {
	app := newTestApp(t)

	res := app.login("admin", app.password)
	first := sessionCookie(t, res)

	res = app.login("admin", app.password)
	second := sessionCookie(t, res)

	assert.NotEqual(t, first, second, "session ids must never be reused across logins")

	// The id presented before the second login is dead now.
	_, err := app.sessions.GetUserID(context.Background(), first)
	assert.ErrorIs(t, err, auth.ErrNoSession)
}

func sessionCookie(t *testing.T, res *http.Response) string {
	t.Helper()
	for _, c := range res.Cookies() {
		if c.Name == auth.SessionCookieName && c.Value != "" {
			return c.Value
		}
	}
	t.Fatal("no session cookie on response")
	return ""
}

func TestLogoutClearsSessionState(t *testing.T) {
	app := newTestApp(t)
	app.login("admin", app.password)

	res := app.postForm("/admin/logout", nil)
	assertRedirectTo(t, res, "/login")

	page := app.html(app.get("/login"))
	assert.Contains(t, page, "You have successfully logged out")

	assertRedirectTo(t, app.get("/admin/dashboard"), "/login")
}

func TestChangePasswordValidation(t *testing.T) {
	app := newTestApp(t)
	app.login("admin", app.password)
	before := app.users.user.PasswordHash

	// Mismatched new passwords.
	res := app.postForm("/admin/password", url.Values{
		"current_password":   {app.password},
		"new_password":       {"brand-new-password"},
		"new_password_check": {"different-password"},
	})
	assertRedirectTo(t, res, "/admin/password")
	page := app.html(app.get("/admin/password"))
	assert.Contains(t, page, "You entered two different new passwords.")
	assert.Equal(t, before, app.users.user.PasswordHash)

	// Wrong current password.
	res = app.postForm("/admin/password", url.Values{
		"current_password":   {"definitely-wrong"},
		"new_password":       {"brand-new-password"},
		"new_password_check": {"brand-new-password"},
	})
	assertRedirectTo(t, res, "/admin/password")
	page = app.html(app.get("/admin/password"))
	assert.Contains(t, page, "The current password is incorrect.")
	assert.Equal(t, before, app.users.user.PasswordHash)
}

func TestChangePasswordEndToEnd(t *testing.T) {
	app := newTestApp(t)
	const newPassword = "an-entirely-new-password"

	res := app.login("admin", app.password)
	assertRedirectTo(t, res, "/admin/dashboard")

	res = app.postForm("/admin/password", url.Values{
		"current_password":   {app.password},
		"new_password":       {newPassword},
		"new_password_check": {newPassword},
	})
	assertRedirectTo(t, res, "/admin/password")
	page := app.html(app.get("/admin/password"))
	assert.Contains(t, page, "Your password has been changed.")

	res = app.postForm("/admin/logout", nil)
	assertRedirectTo(t, res, "/login")

	// Old password no longer works.
	res = app.login("admin", app.password)
	assertRedirectTo(t, res, "/login")

	// New one does.
	res = app.login("admin", newPassword)
	assertRedirectTo(t, res, "/admin/dashboard")
}

func TestPublishDeliversToConfirmedOnly(t *testing.T) {
	app := newTestApp(t)
	app.subs.byToken["tok"] = dom.Subscriber{
		Email: "pending@example.com", Status: dom.StatusPendingConfirmation, ConfirmationToken: "tok",
	}
	app.subs.confirmed = []string{"confirmed@example.com"}
	app.login("admin", app.password)

	res := app.postForm("/admin/newsletters", url.Values{
		"title":        {"Newsletter title"},
		"text_content": {"Newsletter body as plain text"},
		"html_content": {"<p>Newsletter body as HTML</p>"},
	})
	assertRedirectTo(t, res, "/admin/newsletters")

	page := app.html(app.get("/admin/newsletters"))
	assert.Contains(t, page, "The newsletter issue has been published!")

	assert.Equal(t, []string{"confirmed@example.com"}, app.mailer.sent)
}

func TestPublishWithOnlyPendingSubscribersSendsNothing(t *testing.T) {
	app := newTestApp(t)
	app.subs.byToken["tok"] = dom.Subscriber{
		Email: "pending@example.com", Status: dom.StatusPendingConfirmation, ConfirmationToken: "tok",
	}
	app.login("admin", app.password)

	res := app.postForm("/admin/newsletters", url.Values{
		"title":        {"Newsletter title"},
		"text_content": {"Newsletter body as plain text"},
	})
	assertRedirectTo(t, res, "/admin/newsletters")

	page := app.html(app.get("/admin/newsletters"))
	assert.Contains(t, page, "The newsletter issue has been published!")
	assert.Empty(t, app.mailer.sent)
}

func TestPublishEmptyIssueFlashesValidationError(t *testing.T) {
	app := newTestApp(t)
	app.login("admin", app.password)

	res := app.postForm("/admin/newsletters", url.Values{"title": {""}})
	assertRedirectTo(t, res, "/admin/newsletters")

	page := app.html(app.get("/admin/newsletters"))
	assert.Contains(t, page, "The issue needs a title and some content.")
	assert.Empty(t, app.mailer.sent)
}

func TestSubscribeSendsConfirmationEmail(t *testing.T) {
	app := newTestApp(t)

	res := app.postForm("/subscriptions", url.Values{
		"name":  {"le guin"},
		"email": {"ursula_le_guin@gmail.com"},
	})
	body := app.html(res)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "Check your inbox")
	assert.Equal(t, []string{"ursula_le_guin@gmail.com"}, app.mailer.sent)
}

func TestConfirmTokenTwiceSucceedsBothTimes(t *testing.T) {
	app := newTestApp(t)
	app.subs.byToken["tok"] = dom.Subscriber{
		Email: "pending@example.com", Status: dom.StatusPendingConfirmation, ConfirmationToken: "tok",
	}

	res := app.get("/subscriptions/confirm?token=tok")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	res.Body.Close()

	res = app.get("/subscriptions/confirm?token=tok")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	res.Body.Close()

	assert.Equal(t, []string{"pending@example.com"}, app.subs.confirmed,
		"exactly one status write despite two redemptions")
}

func TestConfirmUnknownToken(t *testing.T) {
	app := newTestApp(t)

	res := app.get("/subscriptions/confirm?token=nope")
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	res.Body.Close()

	res = app.get("/subscriptions/confirm")
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	res.Body.Close()
}

func TestLoginPagesRenderForms(t *testing.T) {
	app := newTestApp(t)

	page := app.html(app.get("/login"))
	assert.True(t, strings.Contains(page, `action="/login"`))
	assert.Contains(t, page, `name="username"`)
	assert.Contains(t, page, `name="password"`)
}
