package scpi

// StripBlockHeader removes an IEEE-488.2 definite-length block envelope
// "#<N><N digits of length><payload>" and returns exactly the payload
// bytes. Input without the marker, or with an envelope that does not
// parse, is returned unchanged — a malformed envelope is never fatal.
func StripBlockHeader(data []byte) []byte {
	if len(data) < 2 || data[0] != '#' {
		return data
	}
	n := int(data[1] - '0')
	if n < 1 || n > 9 || len(data) < 2+n {
		return data
	}
	count := 0
	for _, c := range data[2 : 2+n] {
		if c < '0' || c > '9' {
			return data
		}
		count = count*10 + int(c-'0')
	}
	start := 2 + n
	if start+count > len(data) {
		return data
	}
	return data[start : start+count]
}
