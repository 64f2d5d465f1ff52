package testutil

import (
	"net/http"
	"time"

	"clearance/pkg/requestcontext"
)

// WithOfficer marks the request as authenticated by officerID, as the officer
// auth middleware would.
func WithOfficer(req *http.Request, officerID string) *http.Request {
	if officerID == "" {
		return req
	}
	return req.WithContext(requestcontext.WithOfficerID(req.Context(), officerID))
}

// AtTime pins the request-scoped clock.
func AtTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
