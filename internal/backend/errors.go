package backend

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrNoRows is returned when a single-row lookup matches nothing.
	ErrNoRows = errors.New("no rows in result set")
	// ErrConflict reports a unique constraint violation.
	ErrConflict = errors.New("duplicate key value violates unique constraint")
	// ErrReferenced reports a foreign key violation.
	ErrReferenced = errors.New("violates foreign key constraint")
)

// Error describes a failed table operation.
type Error struct {
	Op    string
	Table string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Table, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func tableError(op, table string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		err = ErrNoRows
	case errors.Is(err, gorm.ErrDuplicatedKey):
		err = fmt.Errorf("%w: %v", ErrConflict, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		err = fmt.Errorf("%w: %v", ErrReferenced, err)
	}
	return &Error{Op: op, Table: table, Err: err}
}
