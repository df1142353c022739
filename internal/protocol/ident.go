package protocol

// ValidResultID reports whether s has the shape of a service-issued result
// identifier: 64 hexadecimal characters (a SHA-256 digest of the submitted
// workbook). Identifiers returned by a live submit are treated as opaque;
// this check guards only identifiers supplied by hand for resumed polling.
func ValidResultID(s string) bool {
	if len(s) != 64 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
