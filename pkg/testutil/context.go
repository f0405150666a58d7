package testutil

import (
	"net/http"
	"time"

	id "ensemble/pkg/domain"
	"ensemble/pkg/requestcontext"
)

// WithReviewer adds an authenticated reviewer ID to the request context.
// This simulates what the auth middleware would do for authenticated requests.
func WithReviewer(req *http.Request, reviewerID id.ReviewerID) *http.Request {
	return req.WithContext(requestcontext.WithReviewerID(req.Context(), reviewerID))
}

// WithRequestTime pins the request-scoped clock so handlers under test
// produce deterministic timestamps.
func WithRequestTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
