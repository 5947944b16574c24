package gigachat

import "strings"

// Error — отказ GigaChat после исчерпания всех моделей или при получении
// токена. Код пригоден для отдачи наружу и различения классов отказа.
type Error struct {
	Code    string // gigachat_auth_401, gigachat_http_500, gigachat_unavailable, ...
	Status  int    // HTTP-статус апстрима, если был
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

// IsAuth сообщает, что отказал токен-эндпоинт, а не генерация.
func (e *Error) IsAuth() bool {
	return strings.HasPrefix(e.Code, "gigachat_auth")
}
