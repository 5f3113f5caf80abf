package vtt

import "errors"

// Error taxonomy for state mutation and the save codec. Record-level
// failures inside a save file never surface these; they degrade in place.
// Header-level failures wrap ErrFormat or ErrIO and abort the whole load.
var (
	// ErrIO wraps open/read/write failures on the save file itself.
	ErrIO = errors.New("i/o failure")

	// ErrFormat marks a bad magic constant or a truncated/malformed
	// structural field in a save header.
	ErrFormat = errors.New("malformed save data")

	// ErrDecode marks bytes that are not a valid raster image.
	ErrDecode = errors.New("image decode failure")

	// ErrCapacity marks an attempt to exceed a configured maximum
	// token, drawing, or asset count.
	ErrCapacity = errors.New("capacity exceeded")

	// ErrSizeSanity marks an embedded blob whose declared length is
	// negative or above the embedded-asset ceiling. Loads degrade the
	// affected record in place; InspectSave reports the classification.
	ErrSizeSanity = errors.New("embedded blob size out of range")
)
