package types

// SuccessEnvelope is the body shape for every 2xx response: the payload
// always sits under "data".
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the client-facing error payload. Details is only populated
// for codes whose metadata allows it.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope is the body shape for every error response.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
