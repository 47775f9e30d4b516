// internal/dualityview/errors.go
package dualityview

import "fmt"

// ResolutionError reports a tree member whose table or column cannot be
// found in the related schemas.
type ResolutionError struct {
	Field  string
	Reason string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("duality view member %q: %s", e.Field, e.Reason)
}

// Pesan untuk subquery tanpa tabel anak.
const missingChildTable = "Specify child table for all join subqueries"
