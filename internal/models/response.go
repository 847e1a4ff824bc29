package models

type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   Error       `json:"error"`
	Report  *SyncReport `json:"report,omitempty"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message *string     `json:"message,omitempty"`
}
