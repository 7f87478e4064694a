package utils

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

var (
	ErrorRecordNotFound       = errors.New("record not found")
	ErrorOrganizationRequired = errors.New("organization id is required")
)

const mysqlDuplicateEntry = 1062

// IsDuplicateKey reports a MySQL unique constraint violation.
func IsDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlDuplicateEntry
	}
	return false
}

func RequireOrganization(organizationId string) error {
	if organizationId == "" {
		return ErrorOrganizationRequired
	}
	return nil
}

// InputError marks a rejection caused by the caller's input rather than the store.
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }

func NewInputError(message string) error {
	return &InputError{Message: message}
}

func IsInputError(err error) bool {
	var inputErr *InputError
	return errors.As(err, &inputErr)
}
