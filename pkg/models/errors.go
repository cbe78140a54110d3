package models

import "errors"

// ErrInvalidCategory is returned when a category tag is missing or not recognized
var ErrInvalidCategory = errors.New("invalid content type")

// ErrInvalidEntry is returned when a request body does not match the schema of its category
var ErrInvalidEntry = errors.New("invalid entry")

// ErrNoFileProvided is returned when an upload request carries no file part
var ErrNoFileProvided = errors.New("no file uploaded")

// ErrPayloadTooLarge is returned when an upload exceeds the configured ceiling
var ErrPayloadTooLarge = errors.New("payload too large")

// ErrStorageUnavailable is returned when the content document cannot be read or written
var ErrStorageUnavailable = errors.New("storage unavailable")

// ErrInvalidCredentials is returned when a login does not match the configured admin
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrUnauthorized is returned when a token is missing, malformed, tampered with or expired
var ErrUnauthorized = errors.New("unauthorized")

// ErrNotFound is returned when a file or entry to act on does not exist
var ErrNotFound = errors.New("not found")
