package token

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims structure for claims in JWT, subject is the username
type Claims struct {
	jwt.RegisteredClaims
}

// Secret Key for JWT signing and validation
// 默認值僅供非生產環境使用，生產環境由配置覆蓋
var (
	jwtSecret       = []byte("secret")
	tokenExpiration = 60 * time.Minute
)

// Validation failure reasons
var (
	// ErrMissingToken no bearer token supplied
	ErrMissingToken = errors.New("missing token")
	// ErrMalformedToken token cannot be parsed as a JWT
	ErrMalformedToken = errors.New("malformed token")
	// ErrTokenExpired token exp is in the past
	ErrTokenExpired = errors.New("token expired")
	// ErrBadSignature token signature does not verify against the service secret
	ErrBadSignature = errors.New("bad signature")
)

// SetSecret override the signing secret from configuration
func SetSecret(secret string) {
	if secret != "" {
		jwtSecret = []byte(secret)
	}
}

// GenerateJWT generates a JWT token, expiry now+1h
func GenerateJWT(username string) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenExpiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ParseJWT parses a JWT and extracts the Claims
func ParseJWT(tokenStr string) (*Claims, error) {
	// exp 先於簽名檢查：過期的 token 一律回報 expired
	var pre Claims
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, &pre); err != nil {
		return nil, ErrMalformedToken
	}
	// 沒有 exp 的 token 等於永不過期，直接拒絕
	if pre.ExpiresAt == nil {
		return nil, ErrMalformedToken
	}
	if pre.ExpiresAt.Before(time.Now()) {
		return nil, ErrTokenExpired
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Check if the signing method is HMAC
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadSignature
		}
		return jwtSecret, nil
	}, jwt.WithExpirationRequired())

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrBadSignature
		default:
			return nil, ErrMalformedToken
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrMalformedToken
	}

	return claims, nil
}

// ValidateBearer 驗證 Authorization header，合法時返回 username
// 純函數：只依賴 token、secret 與時鐘
func ValidateBearer(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingToken
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", ErrMalformedToken
	}

	claims, err := ParseJWT(strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", ErrMalformedToken
	}

	return claims.Subject, nil
}
