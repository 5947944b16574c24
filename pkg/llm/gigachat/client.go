package gigachat

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/artem13815/matcher/pkg/llm"
)

// Таймауты: получение токена быстрое, генерация ответа — нет.
const (
	authTimeout = 20 * time.Second
	chatTimeout = 40 * time.Second

	// Токен считаем протухшим за минуту до заявленного срока,
	// чтобы не словить 401 на границе.
	tokenSafetyMargin = 60 * time.Second

	defaultTokenTTL = 30 * time.Minute
)

// Config описывает подключение к GigaChat.
type Config struct {
	AuthKey  string // base64(client_id:client_secret)
	Scope    string
	Models   []string // цепочка фолбэка, по порядку предпочтения
	OAuthURL string
	APIURL   string
	Insecure bool // пропускать проверку TLS-сертификата (российский корневой CA)
}

// Client — клиент GigaChat chat-completions с кэшем OAuth-токена и
// фолбэком по списку моделей. Реализует llm.ChatModel и llm.JSONModel.
type Client struct {
	cfg  Config
	auth *http.Client
	chat *http.Client
	log  *zap.Logger

	token tokenCache
}

// tokenCache — единственное разделяемое изменяемое состояние клиента.
type tokenCache struct {
	mu        sync.Mutex
	value     string
	expiresAt time.Time
}

func New(cfg Config, log *zap.Logger) *Client {
	if cfg.Scope == "" {
		cfg.Scope = "GIGACHAT_API_PERS"
	}
	if cfg.OAuthURL == "" {
		cfg.OAuthURL = "https://ngw.devices.sberbank.ru:9443/api/v2/oauth"
	}
	if cfg.APIURL == "" {
		cfg.APIURL = "https://gigachat.devices.sberbank.ru/api/v1/chat/completions"
	}
	if len(cfg.Models) == 0 {
		cfg.Models = []string{"GigaChat"}
	}
	var transport http.RoundTripper
	if cfg.Insecure {
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
		}
	}
	return &Client{
		cfg:  cfg,
		auth: &http.Client{Timeout: authTimeout, Transport: transport},
		chat: &http.Client{Timeout: chatTimeout, Transport: transport},
		log:  log,
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionsRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float32   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatChoice struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

type chatCompletionsResponse struct {
	Choices []chatChoice `json:"choices"`
}

type oauthResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at"` // epoch millis
}

// accessToken возвращает валидный токен, при необходимости запрашивая новый.
// Блокировка держится на время запроса: параллельные вызовы не устраивают
// гонку за токен-эндпоинт.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.token.mu.Lock()
	defer c.token.mu.Unlock()

	now := time.Now()
	if c.token.value != "" && now.Before(c.token.expiresAt.Add(-tokenSafetyMargin)) {
		return c.token.value, nil
	}

	if c.cfg.AuthKey == "" {
		return "", &Error{Code: "gigachat_auth_missing", Message: "не задан ключ авторизации"}
	}

	form := url.Values{"scope": {c.cfg.Scope}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.OAuthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", &Error{Code: "gigachat_auth_unavailable", Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Basic "+c.cfg.AuthKey)
	req.Header.Set("RqUID", uuid.NewString())

	resp, err := c.auth.Do(req)
	if err != nil {
		return "", &Error{Code: "gigachat_auth_unavailable", Message: err.Error()}
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		var errBody struct {
			Description string `json:"error_description"`
		}
		_ = json.Unmarshal(body, &errBody)
		return "", &Error{
			Code:    fmt.Sprintf("gigachat_auth_%d", resp.StatusCode),
			Status:  resp.StatusCode,
			Message: strings.TrimSpace(strings.ReplaceAll(errBody.Description, "\n", " ")),
		}
	}

	var payload oauthResponse
	if err := json.Unmarshal(body, &payload); err != nil || payload.AccessToken == "" {
		return "", &Error{Code: "gigachat_auth_invalid", Message: "ответ без access_token"}
	}

	c.token.value = payload.AccessToken
	if payload.ExpiresAt > 0 {
		c.token.expiresAt = time.UnixMilli(payload.ExpiresAt)
	} else {
		c.token.expiresAt = now.Add(defaultTokenTTL)
	}
	if c.log != nil {
		c.log.Debug("gigachat token obtained", zap.Time("expires_at", c.token.expiresAt))
	}
	return c.token.value, nil
}

// Ask отправляет запрос по цепочке моделей и возвращает первый успешный ответ.
func (c *Client) Ask(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return "", err
	}
	var lastErr *Error
	for _, model := range c.cfg.Models {
		content, cerr := c.completeOnce(ctx, token, model, systemPrompt, userPrompt)
		if cerr != nil {
			lastErr = cerr
			if c.log != nil {
				c.log.Warn("gigachat model failed, trying next",
					zap.String("model", model), zap.String("code", cerr.Code))
			}
			continue
		}
		return content, nil
	}
	if lastErr == nil {
		lastErr = &Error{Code: "gigachat_failed"}
	}
	return "", lastErr
}

// AskJSON — как Ask, но невалидный JSON в ответе модели тоже считается
// отказом и двигает цепочку дальше. Возвращает уже распарсенный объект.
func (c *Client) AskJSON(ctx context.Context, systemPrompt, userPrompt string) (map[string]any, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}
	var lastErr *Error
	for _, model := range c.cfg.Models {
		content, cerr := c.completeOnce(ctx, token, model, systemPrompt, userPrompt)
		if cerr != nil {
			lastErr = cerr
			continue
		}
		obj, ok := llm.ExtractJSONObject(content)
		if !ok {
			lastErr = &Error{Code: "gigachat_invalid_json"}
			continue
		}
		var out map[string]any
		if err := json.Unmarshal([]byte(obj), &out); err != nil {
			lastErr = &Error{Code: "gigachat_invalid_json", Message: err.Error()}
			continue
		}
		return out, nil
	}
	if lastErr == nil {
		lastErr = &Error{Code: "gigachat_failed"}
	}
	return nil, lastErr
}

func (c *Client) completeOnce(ctx context.Context, token, model, systemPrompt, userPrompt string) (string, *Error) {
	reqBody := chatCompletionsRequest{
		Model: model,
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.2,
		MaxTokens:   2000,
	}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", &Error{Code: "gigachat_bad_request", Message: err.Error()}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, strings.NewReader(string(data)))
	if err != nil {
		return "", &Error{Code: "gigachat_unavailable", Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.chat.Do(req)
	if err != nil {
		return "", &Error{Code: "gigachat_unavailable", Message: err.Error()}
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		var errBody struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.Unmarshal(body, &errBody)
		return "", &Error{
			Code:    fmt.Sprintf("gigachat_http_%d", resp.StatusCode),
			Status:  resp.StatusCode,
			Message: strings.TrimSpace(strings.ReplaceAll(errBody.Error.Message, "\n", " ")),
		}
	}

	var out chatCompletionsResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", &Error{Code: "gigachat_bad_response", Message: err.Error()}
	}
	if len(out.Choices) == 0 {
		return "", &Error{Code: "gigachat_bad_response", Message: "пустой список choices"}
	}
	return out.Choices[0].Message.Content, nil
}

var (
	_ llm.ChatModel = (*Client)(nil)
	_ llm.JSONModel = (*Client)(nil)
)
