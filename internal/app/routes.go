package app

import (
	"Newsroom/internal/auth"
	"Newsroom/internal/cache"
	"Newsroom/internal/config"
	"Newsroom/internal/flash"
	"Newsroom/internal/handlers"
	"Newsroom/internal/mailer"
	"Newsroom/internal/repo"
	"Newsroom/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, db *pgxpool.Pool, rdb *redis.Client, m mailer.Mailer) {
	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))

	signer := flash.NewSigner(cfg.App.HMACSecret)
	sessions := auth.NewRedisStore(rdb, cfg.Session.TTL.Duration())

	userRepo := repo.NewPGUserRepo(db)
	authSvc := service.NewAuthService(userRepo)
	authHandler := handlers.NewAuthHandler(sessions, authSvc, signer, int(cfg.Session.TTL.Duration().Seconds()))

	subRepo := repo.NewPGSubscriberRepo(db)
	recipients := cache.NewRecipientCache(rdb, cfg.Redis.DefaultTTL.Duration())
	subSvc := service.NewSubscriptionService(subRepo, m, recipients, cfg.App.BaseURL)
	newsSvc := service.NewNewsletterService(subRepo, recipients, m)
	newsHandler := handlers.NewNewsletterHandler(subSvc, newsSvc, signer)

	r.GET("/", newsHandler.Home)
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
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"version": cfg.App.Version})
	}
}
