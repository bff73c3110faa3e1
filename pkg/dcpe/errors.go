package dcpe

import (
	"errors"
	"fmt"

	"github.com/vecsec/dcpe-go/pkg/dcpe/prf"
)

var (
	// ErrInvalidConfiguration indicates a non-positive or non-finite β, max
	// scale or fixed scale.
	ErrInvalidConfiguration = errors.New("dcpe: invalid configuration")

	// ErrInvalidKeySize indicates a fixed hash key whose length is neither zero
	// nor prf.DigestSize. It is the same value as prf.ErrInvalidKeySize.
	ErrInvalidKeySize = prf.ErrInvalidKeySize

	// ErrDimensionMismatch indicates vectors or buffers of different lengths.
	ErrDimensionMismatch = errors.New("dcpe: dimension mismatch")

	// ErrInvalidKey indicates a nil or destroyed secret key.
	ErrInvalidKey = errors.New("dcpe: invalid key")

	// ErrInvalidKeyEncoding indicates a malformed PEM key export.
	ErrInvalidKeyEncoding = errors.New("dcpe: invalid key encoding")
)

// Error records the operation that failed along with the underlying error.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("dcpe.%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func opError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

func errorf(op string, format string, args ...interface{}) error {
	return &Error{
		Op:  op,
		Err: fmt.Errorf(format, args...),
	}
}
