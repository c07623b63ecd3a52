package handlers

import (
	"bytes"
	"html/template"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Minimal server-rendered pages. Each page takes pageData; Flash is empty
// unless a one-shot message is pending.
type pageData struct {
	Flash    string
	Username string
}

var pages = template.Must(template.New("pages").Parse(`
{{define "home"}}<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Newsroom</title></head>
<body>
<p>Welcome to our newsletter!</p>
<form action="/subscriptions" method="post">
  <label>Name <input type="text" name="name"></label>
  <label>Email <input type="email" name="email"></label>
  <button type="submit">Subscribe</button>
</form>
</body>
</html>{{end}}

{{define "login"}}<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Login</title></head>
<body>
{{if .Flash}}<p><i>{{.Flash}}</i></p>{{end}}
<form action="/login" method="post">
  <label>Username <input type="text" name="username"></label>
  <label>Password <input type="password" name="password"></label>
  <button type="submit">Login</button>
</form>
</body>
</html>{{end}}

{{define "dashboard"}}<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Admin dashboard</title></head>
<body>
<p>Welcome {{.Username}}!</p>
<p>Available actions:</p>
<ol>
  <li><a href="/admin/password">Change password</a></li>
  <li><a href="/admin/newsletters">Publish a newsletter issue</a></li>
  <li>
    <form name="logoutForm" action="/admin/logout" method="post">
      <input type="submit" value="Logout">
    </form>
  </li>
</ol>
</body>
</html>{{end}}

{{define "password"}}<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Change password</title></head>
<body>
{{if .Flash}}<p><i>{{.Flash}}</i></p>{{end}}
<form action="/admin/password" method="post">
  <label>Current password <input type="password" name="current_password"></label>
  <label>New password <input type="password" name="new_password"></label>
  <label>Confirm new password <input type="password" name="new_password_check"></label>
  <button type="submit">Change password</button>
</form>
<p><a href="/admin/dashboard">&lt;- Back</a></p>
</body>
</html>{{end}}

{{define "newsletters"}}<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Publish newsletter</title></head>
<body>
{{if .Flash}}<p><i>{{.Flash}}</i></p>{{end}}
<form action="/admin/newsletters" method="post">
  <label>Title <input type="text" name="title"></label>
  <label>Plain text content <textarea name="text_content"></textarea></label>
  <label>HTML content <textarea name="html_content"></textarea></label>
  <button type="submit">Publish</button>
</form>
<p><a href="/admin/dashboard">&lt;- Back</a></p>
</body>
</html>{{end}}

{{define "confirmed"}}<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Subscription confirmed</title></head>
<body>
<p>Your subscription is confirmed. Thank you!</p>
</body>
</html>{{end}}
`))

// renderPage executes into a buffer first so a template failure becomes a
// clean 500 instead of a 200 with a truncated body.
func renderPage(c *gin.Context, name string, data pageData) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		log.Printf("render %s: %v", name, err)
		_ = c.Error(err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
