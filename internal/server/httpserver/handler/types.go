package handler

// ErrorResponse is the error body returned by every endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// RateLimitResponse is the 429 body.
type RateLimitResponse struct {
	Error      string `json:"error"`
	Code       string `json:"code"`
	RetryAfter int64  `json:"retryAfter"`
	Limit      int64  `json:"limit"`
	Remaining  int64  `json:"remaining"`
}

// ChatRequest is the request body for POST /api/chat.
type ChatRequest struct {
	UserMessage string `json:"userMessage"`
	Language    string `json:"language,omitempty"`
	Audio       bool   `json:"audio,omitempty"`
	CSRFToken   string `json:"csrfToken,omitempty"`
}

// ChatResponse is the response body for POST /api/chat.
type ChatResponse struct {
	Response  string `json:"response"`
	Timestamp string `json:"timestamp"`
	AudioURL  string `json:"audioUrl,omitempty"`
	Cached    bool   `json:"cached,omitempty"`
}

// HealthResponse is the body of GET /health and GET /ready.
type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
}
