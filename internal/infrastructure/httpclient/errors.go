package httpclient

import "fmt"

const maxErrorBodyRunes = 200

// APIError is returned when the API answers with a non-2xx status.
type APIError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *APIError) Error() string {
	body := e.Body
	if runes := []rune(body); len(runes) > maxErrorBodyRunes {
		body = string(runes[:maxErrorBodyRunes]) + "..."
	}
	return fmt.Sprintf("request to %s failed with status %d: %s", e.URL, e.StatusCode, body)
}
