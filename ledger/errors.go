package ledger

import "errors"

var (
	ErrNotFound    = errors.New("ledger: not found")
	ErrInvalidKind = errors.New("ledger: invalid kind")
	ErrEmptyHash   = errors.New("ledger: empty hash")
	ErrConflict    = errors.New("ledger: conflicting hash already recorded")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
