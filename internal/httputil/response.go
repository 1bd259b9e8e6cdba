package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
)

// errorPayload is the body of every failed request. Success responses are
// written bare: the status summary, poster listings and job listings each
// define their own shape and need no second wrapper.
type errorPayload struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteJSON writes v as the whole response body.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// WriteError writes the error envelope with a stable machine-readable code
// alongside the human-readable message.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, errorPayload{Error: errorDetail{Code: code, Message: message}})
}

// ReadJSON decodes the request body into dst, rejecting trailing data after
// the first JSON value.
func ReadJSON(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}

// QueryInt reads an integer query parameter, falling back to def when the
// parameter is absent or unparsable and clamping the result to [min, max].
func QueryInt(r *http.Request, name string, def, min, max int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
