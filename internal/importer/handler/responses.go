package handler

// StatusResponse acknowledges a history append.
type StatusResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the importer error body.
type ErrorResponse struct {
	Error string `json:"error"`
}
