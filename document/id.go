package document

import (
	"strings"

	"github.com/google/uuid"
)

// newDocumentID builds a human-readable id such as PO-3F2A9C41.
func newDocumentID(prefix string) string {
	return prefix + "-" + strings.ToUpper(uuid.NewString()[:8])
}

func newRecordID() string {
	return uuid.NewString()
}
