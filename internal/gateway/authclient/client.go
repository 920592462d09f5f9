package authclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	errprocess "video_audio_service/pkg/err"
)

// 驗證呼叫必須有界，auth service 無法連線時降級為 ServiceUnavailable
const requestTimeout = 3 * time.Second

// Client token service HTTP client
type Client struct {
	baseURL string
	http    *http.Client
}

// New create auth service client
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

// Login 轉送 Basic credentials 給 auth service 的 /login
func (c *Client) Login(username, password string) (string, error) {
	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/login", nil)
	if err != nil {
		return "", errprocess.Wrap(err, errprocess.KindInternal, "failed to build login request")
	}
	req.SetBasicAuth(username, password)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errprocess.New(errprocess.KindServiceUnavailable, "auth service unavailable")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return "", errprocess.New(errprocess.KindUnauthorized, "invalid credentials")
	}
	if resp.StatusCode != http.StatusOK {
		return "", errprocess.New(errprocess.KindInternal, fmt.Sprintf("auth service returned %d", resp.StatusCode))
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", errprocess.Wrap(err, errprocess.KindInternal, "failed to decode login response")
	}

	return body.AccessToken, nil
}

// Validate 轉送 Authorization header 給 auth service 的 /validate
// header 為空時直接回報 Unauthorized，不發出請求
func (c *Client) Validate(authHeader string) (string, error) {
	if authHeader == "" {
		return "", &errprocess.Error{Kind: errprocess.KindUnauthorized, Msg: "missing credentials"}
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/validate", nil)
	if err != nil {
		return "", errprocess.Wrap(err, errprocess.KindInternal, "failed to build validate request")
	}
	req.Header.Set("Authorization", authHeader)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errprocess.New(errprocess.KindServiceUnavailable, "auth service unavailable")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		var body struct {
			Error string `json:"error"`
		}
		reason := "invalid token"
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
			reason = body.Error
		}
		return "", &errprocess.Error{Kind: errprocess.KindUnauthorized, Msg: reason}
	}
	if resp.StatusCode != http.StatusOK {
		return "", errprocess.New(errprocess.KindInternal, fmt.Sprintf("auth service returned %d", resp.StatusCode))
	}

	var body struct {
		Username string `json:"username"`
		Valid    bool   `json:"valid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", errprocess.Wrap(err, errprocess.KindInternal, "failed to decode validate response")
	}
	if !body.Valid || body.Username == "" {
		return "", &errprocess.Error{Kind: errprocess.KindUnauthorized, Msg: "invalid token"}
	}

	return body.Username, nil
}
