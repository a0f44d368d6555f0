package stego

import "errors"

var (
	// ErrPayloadEmpty is returned when there is nothing to embed or extract.
	ErrPayloadEmpty = errors.New("payload is empty")
	// ErrPayloadTooLarge is returned when the payload bit count does not fit in 31 bits.
	ErrPayloadTooLarge = errors.New("payload too large")
	// ErrCapacityExceeded is returned when a payload does not fit the carrier.
	ErrCapacityExceeded = errors.New("payload exceeds carrier capacity")
	// ErrCarrierTooSmall is returned for carriers with fewer than three pixels.
	ErrCarrierTooSmall = errors.New("carrier image too small")
	// ErrCarrierTooLarge is returned when a carrier side reaches the dimension limit.
	ErrCarrierTooLarge = errors.New("carrier image too large")
	// ErrLengthMismatch is returned when the bytes moved differ from the bytes declared.
	ErrLengthMismatch = errors.New("payload length mismatch")
	// ErrNoCarriers is returned when extraction is asked to read from zero images.
	ErrNoCarriers = errors.New("no carrier images")
	// ErrInvalidName is returned for carrier names that are not plain file names.
	ErrInvalidName = errors.New("invalid carrier name")
)
