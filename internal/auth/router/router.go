package router

import (
	"github.com/gofiber/fiber/v2"

	"video_audio_service/internal/auth/app"
)

// RegisterRoutes 注册 auth 相关的路由
func RegisterRoutes(r *fiber.App, authHandler *app.AuthHandler) {
	r.Post("/login", authHandler.Login)
	r.Post("/register", authHandler.Register)
	r.Post("/validate", authHandler.Validate)
}
