package utils

import (
	"encoding/json"
	"log"
	"net/http"
)

// Response status values shared with the frontend.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ErrorBody 是所有失败响应的统一结构。
type ErrorBody struct {
	Error  string `json:"error"`
	Status string `json:"status"`
	Source string `json:"source,omitempty"`
}

// RespondJSON 发送JSON响应
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// RespondErrorFrom 发送带来源标记的错误响应
func RespondErrorFrom(w http.ResponseWriter, status int, message, source string) {
	RespondJSON(w, status, ErrorBody{Error: message, Status: StatusError, Source: source})
}
