package handlers

import (
	"errors"
	"net/http"

	dom "Newsroom/internal/domain"
	"Newsroom/internal/dto"
	"Newsroom/internal/flash"
	"Newsroom/internal/service"

	"github.com/gin-gonic/gin"
)

// NewsletterHandler handles subscriptions, confirmations and publishing.
type NewsletterHandler struct {
	subSvc  *service.SubscriptionService
	newsSvc *service.NewsletterService
	flash   *flash.Signer
}

// NewNewsletterHandler returns a new NewsletterHandler.
func NewNewsletterHandler(subSvc *service.SubscriptionService, newsSvc *service.NewsletterService, signer *flash.Signer) *NewsletterHandler {
	return &NewsletterHandler{subSvc: subSvc, newsSvc: newsSvc, flash: signer}
}

// Home renders the public landing page with the subscribe form.
func (h *NewsletterHandler) Home(c *gin.Context) {
	renderPage(c, "home", pageData{})
}

// Subscribe creates a pending subscriber and emails the confirmation link.
func (h *NewsletterHandler) Subscribe(c *gin.Context) {
	var form dto.SubscribeForm
	if err := c.ShouldBind(&form); err != nil {
		c.String(http.StatusBadRequest, "name and email are required")
		return
	}
	_, err := h.subSvc.Subscribe(c.Request.Context(), form.Name, form.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSubscriber):
			c.String(http.StatusBadRequest, "name and a valid email are required")
		case errors.Is(err, service.ErrAlreadySubscribed):
			c.String(http.StatusOK, "You are already subscribed.")
		default:
			c.AbortWithStatus(http.StatusInternalServerError)
		}
		return
	}
	c.String(http.StatusOK, "Check your inbox to confirm your subscription.")
}

// Confirm redeems the token from the emailed link. Following the same link
// twice succeeds both times.
func (h *NewsletterHandler) Confirm(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.String(http.StatusBadRequest, "missing token")
		return
	}
	if err := h.subSvc.Confirm(c.Request.Context(), token); err != nil {
		if errors.Is(err, service.ErrTokenNotFound) {
			c.String(http.StatusUnauthorized, "unknown confirmation token")
			return
		}
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	renderPage(c, "confirmed", pageData{})
}

// PublishForm renders the publish page with any pending flash message.
func (h *NewsletterHandler) PublishForm(c *gin.Context) {
	msg, _ := h.flash.Take(c)
	renderPage(c, "newsletters", pageData{Flash: msg})
}

// Publish fans the issue out to confirmed subscribers. Partial per-recipient
// failures still land on the success flash; only a failed recipient-list
// fetch is a server error.
func (h *NewsletterHandler) Publish(c *gin.Context) {
	var form dto.PublishForm
	if err := c.ShouldBind(&form); err != nil {
		c.String(http.StatusBadRequest, "invalid form")
		return
	}
	_, err := h.newsSvc.Publish(c.Request.Context(), dom.Issue{
		Title:       form.Title,
		TextContent: form.TextContent,
		HTMLContent: form.HTMLContent,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmptyIssue) {
			h.flash.Set(c, "The issue needs a title and some content.")
			c.Redirect(http.StatusSeeOther, "/admin/newsletters")
			return
		}
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	h.flash.Set(c, "The newsletter issue has been published!")
	c.Redirect(http.StatusSeeOther, "/admin/newsletters")
}
