package router

import (
	"github.com/gofiber/fiber/v2"

	"video_audio_service/internal/gateway/handlers"
)

// RegisterRoutes 注册 gateway 相关的路由
func RegisterRoutes(r *fiber.App, gatewayHandler *handlers.GatewayHandler) {
	r.Post("/login", gatewayHandler.Login)
	r.Post("/upload", gatewayHandler.Upload)
	r.Get("/download", gatewayHandler.Download)
}
