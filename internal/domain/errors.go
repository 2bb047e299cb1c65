package domain

import "github.com/pkg/errors"

var (
	// ErrStaleFeedData a book delta arrived for a symbol without a prior snapshot.
	ErrStaleFeedData = errors.New("stale feed data")
	// ErrMissingReferenceData balance, price, book or symbol data needed for a decision is absent.
	ErrMissingReferenceData = errors.New("missing reference data")
	// ErrInvalidOrderParameters computed price or quantity fails the venue minimums.
	ErrInvalidOrderParameters = errors.New("invalid order parameters")
	// ErrVenueRejection the venue rejected an auth or trading request.
	ErrVenueRejection = errors.New("rejected by venue")
	// ErrUnknownMessage an inbound message with an unrecognised channel/event combination.
	ErrUnknownMessage = errors.New("unknown message")
)
