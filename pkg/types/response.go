package types

// SuccessEnvelope wraps every 2xx JSON body.
type SuccessEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// ErrorEnvelope is the uniform failure body. Error carries the cause message
// only for codes that allow details.
type ErrorEnvelope struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
	Details any    `json:"details,omitempty"`
}
