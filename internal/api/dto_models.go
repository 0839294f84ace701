package api

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse is a generic structure for simple success messages.
type SuccessResponse struct {
	Message string `json:"message"`
}

// PortalSessionResponse returns the URL of the billing portal.
type PortalSessionResponse struct {
	URL string `json:"url"`
}

// SessionResponse acknowledges a session cookie exchange.
type SessionResponse struct {
	Status    string `json:"status"`
	ExpiresIn int64  `json:"expiresIn"` // seconds
}

// WebhookAck acknowledges receipt of a Stripe event.
type WebhookAck struct {
	Received bool `json:"received"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
