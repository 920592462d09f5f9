package app

import (
	"encoding/base64"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	errprocess "video_audio_service/pkg/err"
	"video_audio_service/pkg/logger"
)

// AuthHandler token service HTTP boundary
type AuthHandler struct {
	Usecase AuthUseCase
}

// NewAuthHandler create auth handler
func NewAuthHandler(usecase AuthUseCase) *AuthHandler {
	return &AuthHandler{Usecase: usecase}
}

// RegisterReq register request body
type RegisterReq struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register 建立使用者，重複的 username 回 409
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Username == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "username and password are required"})
	}

	user, err := h.Usecase.Register(c.UserContext(), req.Name, req.Username, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":       user.ID,
		"username": user.Username,
		"name":     user.Name,
	})
}

// Login Basic credentials 換取 bearer token
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	username, password, ok := parseBasicAuth(c.Get(fiber.HeaderAuthorization))
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing or invalid credentials"})
	}

	signed, err := h.Usecase.Issue(c.UserContext(), username, password)
	if err != nil {
		logger.Log.Debug("login failed", zap.String("username", username))
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"access_token": signed,
		"token_type":   "bearer",
	})
}

// Validate 驗證 bearer token，成功時回報 username
func (h *AuthHandler) Validate(c *fiber.Ctx) error {
	username, err := h.Usecase.Validate(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"username": username,
		"valid":    true,
	})
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
