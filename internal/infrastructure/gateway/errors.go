package gateway

import "fmt"

type GatewayErrorResponse struct {
	Err     string `json:"error"`
	Message string `json:"message"`
}

type GatewayError struct {
	Code       string
	Message    string
	StatusCode int
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway error %s (status %d): %s", e.Code, e.StatusCode, e.Message)
}
