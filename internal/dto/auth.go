package dto

// LoginForm is the form body for POST /login.
type LoginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// ChangePasswordForm is the form body for POST /admin/password.
type ChangePasswordForm struct {
	CurrentPassword  string `form:"current_password" binding:"required"`
	NewPassword      string `form:"new_password" binding:"required"`
	NewPasswordCheck string `form:"new_password_check" binding:"required"`
}
