package panel

import "errors"

var (
	// ErrMissingField is returned when a required stream field is blank.
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidName is returned when a stream name cannot be turned into a
	// logo or pid filename.
	ErrInvalidName = errors.New("invalid stream name")

	// ErrIndexOutOfRange is returned when a positional index does not address
	// a record in the current list.
	ErrIndexOutOfRange = errors.New("stream index out of range")

	// ErrStreamNotFound is returned when no record carries the given channel id.
	ErrStreamNotFound = errors.New("stream not found")

	// ErrCorruptStore is returned when the configuration document cannot be decoded.
	ErrCorruptStore = errors.New("configuration document is corrupt")

	// ErrPlaylistStale is returned when the store was written but the playlist
	// could not be regenerated from it.
	ErrPlaylistStale = errors.New("playlist not regenerated")
)
