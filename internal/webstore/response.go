package webstore

import (
	"encoding/json"
	"slices"
)

// Upload states reported by the store.
const (
	UploadStateSuccess    = "SUCCESS"
	UploadStateInProgress = "IN_PROGRESS"
	UploadStateFailure    = "FAILURE"
	UploadStateNotFound   = "NOT_FOUND"
)

// Publish status codes treated as accepted.
const (
	PublishStatusOK                = "OK"
	PublishStatusItemPendingReview = "ITEM_PENDING_REVIEW"
)

// ItemError describes one problem the store found with an upload.
type ItemError struct {
	ErrorCode   string `json:"error_code"`
	ErrorDetail string `json:"error_detail"`
}

// UploadResponse is the body of an upload call.
type UploadResponse struct {
	Kind        string      `json:"kind"`
	ID          string      `json:"id"`
	UploadState string      `json:"uploadState"`
	ItemError   []ItemError `json:"itemError"`
}

// PublishResponse is the body of a publish call.
type PublishResponse struct {
	Kind         string   `json:"kind"`
	ItemID       string   `json:"item_id"`
	Status       []string `json:"status"`
	StatusDetail []string `json:"statusDetail"`
}

// Result is the normalized outcome of one store call.
type Result struct {
	Success    bool
	StatusCode int
	// Body is the raw response body, nil when the response had none.
	Body []byte
}

// String renders the raw body for reporting.
func (r *Result) String() string {
	if r == nil || r.Body == nil {
		return ""
	}
	return string(r.Body)
}

// UploadSucceeded reports whether body is an upload response whose state is
// SUCCESS or IN_PROGRESS. IN_PROGRESS means the store accepted the package but
// is still checking it, so the item is not necessarily fully processed.
func UploadSucceeded(body []byte) bool {
	resp, ok := decode[UploadResponse](body)
	if !ok {
		return false
	}
	return resp.UploadState == UploadStateSuccess || resp.UploadState == UploadStateInProgress
}

// PublishSucceeded reports whether body is a publish response whose status
// list contains OK or ITEM_PENDING_REVIEW.
func PublishSucceeded(body []byte) bool {
	resp, ok := decode[PublishResponse](body)
	if !ok {
		return false
	}
	return slices.Contains(resp.Status, PublishStatusOK) ||
		slices.Contains(resp.Status, PublishStatusItemPendingReview)
}

func decode[T any](body []byte) (*T, bool) {
	if len(body) == 0 {
		return nil, false
	}
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, false
	}
	return &v, true
}
