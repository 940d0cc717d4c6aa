package core

import (
	"errors"
	"fmt"
)

// ErrUnresolvedReference is returned in strict mode when a name lookup found nothing.
var ErrUnresolvedReference = errors.New("unresolved reference")

// InvoiceCreateError is the only error the owner settlement workflow returns. Callers
// treat it as "this owner's invoice failed"; Err keeps the cause for logging.
type InvoiceCreateError struct {
	Owner string
	Err   error
}

func (e *InvoiceCreateError) Error() string {
	return fmt.Sprintf("failed to create an invoice for owner %s", e.Owner)
}

func (e *InvoiceCreateError) Unwrap() error { return e.Err }
