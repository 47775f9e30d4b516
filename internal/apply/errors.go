// internal/apply/errors.go
package apply

import (
	"errors"
	"regexp"
	"strconv"

	"github.com/sijms/go-ora/v2/network"

	"github.com/arwahdevops/oradelta/internal/ddl"
)

// ErrNotAllExecuted is returned when at least one statement failed with a
// non-ignorable error.
var ErrNotAllExecuted = errors.New("not all statements executed successfully")

var oraCode = regexp.MustCompile(`ORA-(\d{5})`)

// ignorableCodes are "object already exists" conditions: the script is
// idempotent with respect to them.
var ignorableCodes = map[int]bool{
	ddl.ErrCodeNameAlreadyUsed: true, // ORA-00955
	ddl.ErrCodeUserConflict:    true, // ORA-01920
}

// OracleErrorCode extracts the ORA-nnnnn code carried by err.
func OracleErrorCode(err error) (int, bool) {
	if err == nil {
		return 0, false
	}
	var oraErr *network.OracleError
	if errors.As(err, &oraErr) && oraErr.ErrCode != 0 {
		return oraErr.ErrCode, true
	}
	m := oraCode.FindStringSubmatch(err.Error())
	if len(m) < 2 {
		return 0, false
	}
	code, convErr := strconv.Atoi(m[1])
	if convErr != nil {
		return 0, false
	}
	return code, true
}

// IsIgnorable reports whether err only says the object is already there.
func IsIgnorable(err error) bool {
	code, ok := OracleErrorCode(err)
	return ok && ignorableCodes[code]
}
