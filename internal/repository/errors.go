// Package repository implements the booking store on MySQL.  Every
// repository wraps a *sql.DB; Store bundles them behind the method set
// used by the allocation engine and the HTTP handlers.
//
// Errors are reported as *apperror.Error so handlers can map them to
// status codes without knowing about MySQL.
package repository

import (
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
)

// MySQL server error numbers the repositories translate.
const (
	errDupEntry        = 1062 // ER_DUP_ENTRY
	errNoReferencedRow = 1452 // ER_NO_REFERENCED_ROW_2
)

func mysqlErrNumber(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

// isDuplicate reports whether err is a unique key violation.
func isDuplicate(err error) bool { return mysqlErrNumber(err) == errDupEntry }

// isMissingParent reports whether err is a foreign key violation on insert.
func isMissingParent(err error) bool { return mysqlErrNumber(err) == errNoReferencedRow }

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func intPtr(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	n := int(ni.Int64)
	return &n
}
