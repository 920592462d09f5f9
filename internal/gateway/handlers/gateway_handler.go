package handlers

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"video_audio_service/internal/gateway/app"
	errprocess "video_audio_service/pkg/err"
	"video_audio_service/pkg/logger"
)

// AuthClient token service 的窄接口，gateway 的每個入口都先經過它
type AuthClient interface {
	Login(username, password string) (string, error)
	Validate(authHeader string) (string, error)
}

// GatewayHandler definition gateway handler
type GatewayHandler struct {
	Auth    AuthClient
	Usecase app.GatewayUseCase
}

// NewGatewayHandler create gateway handler
func NewGatewayHandler(auth AuthClient, usecase app.GatewayUseCase) *GatewayHandler {
	return &GatewayHandler{Auth: auth, Usecase: usecase}
}

// Login 轉送 Basic credentials 給 auth service，成功時回傳 token
func (h *GatewayHandler) Login(c *fiber.Ctx) error {
	username, password, ok := parseBasicAuth(c.Get(fiber.HeaderAuthorization))
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing credentials"})
	}

	signed, err := h.Auth.Login(username, password)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"token": signed})
}

// Upload 接收上傳請求，寫入 video store 並發布轉檔工作
func (h *GatewayHandler) Upload(c *fiber.Ctx) error {
	username, err := h.Auth.Validate(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return respondError(c, err)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is required"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Log.Errorf("open uploaded file failed", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read file"})
	}
	defer file.Close()

	if _, err := h.Usecase.Upload(c.UserContext(), file, fileHeader.Size, username); err != nil {
		return respondError(c, err)
	}

	// 只確認工作已受理，轉檔完成與否不做同步回覆
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "success"})
}

// Download 從 audio store 取回 mp3 blob
func (h *GatewayHandler) Download(c *fiber.Ctx) error {
	_, err := h.Auth.Validate(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return respondError(c, err)
	}

	fid := c.Query("fid")
	rc, size, err := h.Usecase.Download(c.UserContext(), fid)
	if err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s.mp3", fid))
	c.Set(fiber.HeaderContentType, "audio/mpeg")
	return c.SendStream(rc, int(size))
}

// respondError 內部錯誤一律映射為分類後的 status 與短訊息，不外洩原始錯誤
func respondError(c *fiber.Ctx, err error) error {
	kind := errprocess.KindOf(err)
	msg := "internal error"
	if kind != errprocess.KindInternal {
		msg = err.Error()
	}
	return c.Status(errprocess.HTTPStatus(kind)).JSON(fiber.Map{"error": msg})
}

// parseBasicAuth 解析 Basic Authorization header
func parseBasicAuth(header string) (string, string, bool) {
	if !strings.HasPrefix(header, "Basic ") {
		return "", "", false
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(header, "Basic "))
	if err != nil {
		return "", "", false
	}

	parts := strings.SplitN(string(decoded), ":", 2)
	if len(parts) != 2 || parts[0] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
