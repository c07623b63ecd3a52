package handlers

import (
	"errors"
	"net/http"

	"Newsroom/internal/auth"
	"Newsroom/internal/dto"
	"Newsroom/internal/flash"
	"Newsroom/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles login, logout, the dashboard and password changes.
type AuthHandler struct {
	sessions  auth.SessionStore
	authSvc   *service.AuthService
	flash     *flash.Signer
	cookieTTL int // seconds, matches the session TTL
}

// NewAuthHandler returns a new AuthHandler.
func NewAuthHandler(sessions auth.SessionStore, authSvc *service.AuthService, signer *flash.Signer, cookieTTL int) *AuthHandler {
	return &AuthHandler{sessions: sessions, authSvc: authSvc, flash: signer, cookieTTL: cookieTTL}
}

// LoginForm renders the login page with any pending flash message.
func (h *AuthHandler) LoginForm(c *gin.Context) {
	msg, _ := h.flash.Take(c)
	renderPage(c, "login", pageData{Flash: msg})
}

// Login authenticates the form credentials. Success mints a fresh session
// (never reusing a pre-login id) and lands on the dashboard; bad credentials
// bounce back to the form with a flash.
func (h *AuthHandler) Login(c *gin.Context) {
	var form dto.LoginForm
	if err := c.ShouldBind(&form); err != nil {
		h.flash.Set(c, "Authentication failed")
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}
	userID, err := h.authSvc.Authenticate(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.flash.Set(c, "Authentication failed")
			c.Redirect(http.StatusSeeOther, "/login")
			return
		}
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	// Invalidate whatever session id the client showed up with.
	if old, err := c.Cookie(auth.SessionCookieName); err == nil && old != "" {
		_ = h.sessions.Delete(c.Request.Context(), old)
	}
	sessionID, err := h.sessions.Create(c.Request.Context(), userID)
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.SetCookie(auth.SessionCookieName, sessionID, h.cookieTTL, "/", "", false, true)
	c.Redirect(http.StatusSeeOther, "/admin/dashboard")
}

// Logout destroys the session and returns to the login page.
func (h *AuthHandler) Logout(c *gin.Context) {
	if sessionID, err := c.Cookie(auth.SessionCookieName); err == nil && sessionID != "" {
		_ = h.sessions.Delete(c.Request.Context(), sessionID)
	}
	c.SetCookie(auth.SessionCookieName, "", -1, "/", "", false, true)
	h.flash.Set(c, "You have successfully logged out")
	c.Redirect(http.StatusSeeOther, "/login")
}

// Dashboard greets the logged-in admin.
func (h *AuthHandler) Dashboard(c *gin.Context) {
	user, err := h.authSvc.GetUser(c.Request.Context(), auth.UserIDFromContext(c))
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	renderPage(c, "dashboard", pageData{Username: user.Username})
}

// ChangePasswordForm renders the change-password page.
func (h *AuthHandler) ChangePasswordForm(c *gin.Context) {
	msg, _ := h.flash.Take(c)
	renderPage(c, "password", pageData{Flash: msg})
}

// ChangePassword runs the password change and redirects back with the outcome.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var form dto.ChangePasswordForm
	if err := c.ShouldBind(&form); err != nil {
		c.String(http.StatusBadRequest, "all password fields are required")
		return
	}
	err := h.authSvc.ChangePassword(c.Request.Context(), auth.UserIDFromContext(c),
		form.CurrentPassword, form.NewPassword, form.NewPasswordCheck)
	switch {
	case errors.Is(err, service.ErrPasswordMismatch):
		h.flash.Set(c, "You entered two different new passwords.")
	case errors.Is(err, service.ErrIncorrectPassword):
		h.flash.Set(c, "The current password is incorrect.")
	case err != nil:
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	default:
		h.flash.Set(c, "Your password has been changed.")
	}
	c.Redirect(http.StatusSeeOther, "/admin/password")
}
