package bloxs

import (
	"errors"
	"fmt"
)

// Kind tags which step of a Bloxs conversation failed.
type Kind int

const (
	KindTransport Kind = iota
	KindAuth
	KindLookup
	KindUpload
	KindValidate
	KindCreate
	KindUpgrade
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindLookup:
		return "lookup"
	case KindUpload:
		return "upload"
	case KindValidate:
		return "validate"
	case KindCreate:
		return "create"
	case KindUpgrade:
		return "upgrade"
	default:
		return "transport"
	}
}

// APIError is returned for every failed call against the accounting service.
// StatusCode is zero when the request never got a response.
type APIError struct {
	Kind       Kind
	Endpoint   string
	StatusCode int
	Body       string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("bloxs %s %s: unexpected status code %d: %s", e.Kind, e.Endpoint, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("bloxs %s %s: %v", e.Kind, e.Endpoint, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

// KindOf reports the Kind of the first APIError in err's chain.
func KindOf(err error) (Kind, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind, true
	}
	return KindTransport, false
}
