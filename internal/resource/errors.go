package resource

import "errors"

var (
	// ErrNoFile signals an ingestion request without a file payload.
	ErrNoFile = errors.New("no file uploaded")
	// ErrFileTooLarge signals that the upload exceeds configured limits.
	ErrFileTooLarge = errors.New("file too large")
	// ErrResourceNotFound signals that the resource could not be located.
	ErrResourceNotFound = errors.New("resource not found")
	// ErrUploadFailed wraps every downstream failure of an ingestion.
	ErrUploadFailed = errors.New("upload failed")
)
