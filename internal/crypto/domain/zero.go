package domain

// Zero clears key material in place.
func Zero(b []byte) {
	clear(b)
}
