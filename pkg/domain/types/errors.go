package types

import (
	"errors"

	"github.com/m-mizutani/goerr/v2"
)

// Error tags classify failures. The HTTP controller maps each tag to a status code.
var (
	// ErrTagValidation marks bad or missing request input, including paths escaping their folder
	ErrTagValidation = goerr.NewTag("validation")

	// ErrTagExtraction marks a failure of the external extraction tool
	ErrTagExtraction = goerr.NewTag("extraction")

	// ErrTagIO marks filesystem read or traversal failures
	ErrTagIO = goerr.NewTag("io")

	// ErrTagNotFound marks a resolved path that does not exist
	ErrTagNotFound = goerr.NewTag("not_found")

	// ErrTagRead marks a file that exists but cannot be decoded for preview
	ErrTagRead = goerr.NewTag("read")

	// ErrTagZip marks a failure while assembling a zip bundle
	ErrTagZip = goerr.NewTag("zip")

	// ErrTagRateLimited marks a request rejected by the extraction rate limiter
	ErrTagRateLimited = goerr.NewTag("rate_limited")
)

// HasTag reports whether err or any error it wraps carries tag
func HasTag(err error, tag goerr.Tag) bool {
	for err != nil {
		if goerr.HasTag(err, tag) {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}
