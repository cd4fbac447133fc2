package replay

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidScript = errors.New("invalid match script")
	ErrReadScript    = errors.New("read match script failed")
	ErrInvalidOption = errors.New("invalid replay option")
	ErrRequest       = errors.New("momentum server request failed")
)
