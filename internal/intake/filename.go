package intake

import (
	"regexp"
	"strings"
	"time"
)

var unsafeFilenameChars = regexp.MustCompile(`[^\w\- ]+`)

// SuggestedFilename builds "<customer>_<YYYY-MM-DD>.json", falling back to
// "intake" when the customer name is empty or sanitizes away.
func SuggestedFilename(doc Document, now time.Time) string {
	name := strings.TrimSpace(doc.Customer.Name)
	if name == "" {
		name = "intake"
	}
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	if name == "" {
		name = "intake"
	}
	return name + "_" + now.UTC().Format("2006-01-02") + ".json"
}
