package dto

// SubscribeForm is the form body for POST /subscriptions.
type SubscribeForm struct {
	Name  string `form:"name" binding:"required,max=256"`
	Email string `form:"email" binding:"required,max=320"`
}

// PublishForm is the form body for POST /admin/newsletters.
// Content validation (title plus at least one body) lives in the service.
type PublishForm struct {
	Title       string `form:"title"`
	TextContent string `form:"text_content"`
	HTMLContent string `form:"html_content"`
}
