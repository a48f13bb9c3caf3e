package utils

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

var ErrorRecordNotFound = errors.New("record not found")

const mysqlDuplicateEntry = 1062

// IsDuplicateKeyError reports whether err is a MySQL unique-constraint violation.
func IsDuplicateKeyError(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	return false
}

// FriendlyDBError maps driver errors onto messages safe to show to an operator.
func FriendlyDBError(err error, field string) error {
	if err == nil {
		return nil
	}
	if IsDuplicateKeyError(err) {
		return errors.New("duplicate " + strings.TrimSpace(field))
	}
	return err
}
