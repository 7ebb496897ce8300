package apperr

import (
	"errors"
	"fmt"
)

// Sentinel errors for the itinerary core. Handlers translate these into the
// matching HTTP status; everything else becomes a 500.
var (
	ErrGenerationDisabled      = errors.New("itinerary generation disabled")
	ErrDateNotValid            = errors.New("start date must be greater or equal to today")
	ErrCannotUpdateItinerary   = errors.New("itinerary cannot be updated")
	ErrCityDescriptionNotFound = errors.New("city description not found")
	ErrDocsNotFound            = errors.New("docs not found")
	ErrMissingField            = errors.New("missing field in conversation message")
	ErrRequestNotCompleted     = errors.New("itinerary request has not completed generation")
)

// NotFoundError carries the entity kind and id that could not be resolved.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s found with id %s", e.Kind, e.ID)
}

func NotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
