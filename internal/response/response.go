package response

import "github.com/chandlershortlidge/baby-timer-app/internal"

type APIResponse struct {
	Status string             `json:"status,omitempty"`
	Data   interface{}        `json:"data,omitempty"`
	Meta   map[string]any     `json:"meta,omitempty"`
	Error  *internal.AppError `json:"error,omitempty"`
}

func Success(data interface{}, meta map[string]any) APIResponse {
	return APIResponse{Status: "success", Data: data, Meta: meta}
}

// NotFoundStatus is the body for "no schedule started yet": a 200 with a
// not_found status, distinct from a 404 error.
func NotFoundStatus() APIResponse {
	return APIResponse{Status: "not_found"}
}

func BadRequest(msg string) APIResponse {
	return APIResponse{Error: internal.NewAppError(400, msg)}
}

func NotFound(msg string) APIResponse {
	return APIResponse{Error: internal.NewAppError(404, msg)}
}

func InternalError(msg string) APIResponse {
	return APIResponse{Error: internal.NewAppError(500, msg)}
}

func NewAppError(status int, msg string) APIResponse {
	return APIResponse{Error: internal.NewAppError(status, msg)}
}
