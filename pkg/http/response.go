package http

import (
	"encoding/json"
	"net/http"
)

// ErrorBody тело ответа с ошибкой
type ErrorBody struct {
	Error string `json:"error"`
}

// ErrorResponse пишет {"error": message} с указанным статусом
func ErrorResponse(w http.ResponseWriter, code int, message string) {
	JSONResponse(w, code, ErrorBody{Error: message})
}

// JSONResponse пишет v как JSON с указанным статусом
func JSONResponse(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
