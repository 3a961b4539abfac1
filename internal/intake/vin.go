package intake

import "strings"

// VINLength is the only length a decodable VIN may have.
const VINLength = 17

// NormalizeVIN uppercases raw and strips everything outside A-Z and 0-9.
func NormalizeVIN(raw string) string {
	up := strings.ToUpper(raw)
	var b strings.Builder
	b.Grow(len(up))
	for _, r := range up {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsDecodableVIN reports whether the normalized form of raw has VINLength characters.
func IsDecodableVIN(raw string) bool {
	return len(NormalizeVIN(raw)) == VINLength
}
