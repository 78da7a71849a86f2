package constants

import (
	"errors"
	"time"
)

// Errors
var (
	ErrMalformedResponse   = errors.New("malformed Substack response")
	ErrNoCredentials       = errors.New("must provide email and password or a cookies file to authenticate")
	ErrPublicationNotFound = errors.New("publication not found among the user's publications")
	ErrNoPublication       = errors.New("no publication selected")
	ErrEmptyDraftID        = errors.New("draft id is empty")
)

const (
	DefaultBaseURL         = "https://substack.com/api/v1"
	DefaultUserAgent       = "substack.go/1.0"
	DefaultHTTPTimeout     = 30 * time.Second
	DefaultProfileCacheTTL = 5 * time.Minute

	// DefaultPageSize is the number of entries Substack returns per page of
	// published posts and category publications.
	DefaultPageSize = 25

	// CheckoutURL is the placeholder the editor replaces with the publication's checkout link.
	CheckoutURL = "%%checkout_url%%"
)
