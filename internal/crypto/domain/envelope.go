package domain

// Envelope is an authenticated ciphertext together with what is needed to open it.
// The authentication tag is appended to Ciphertext.
type Envelope struct {
	Algorithm  Algorithm
	Nonce      []byte
	Ciphertext []byte
}

// Clone returns a deep copy so callers cannot mutate stored envelopes.
func (e Envelope) Clone() Envelope {
	return Envelope{
		Algorithm:  e.Algorithm,
		Nonce:      append([]byte(nil), e.Nonce...),
		Ciphertext: append([]byte(nil), e.Ciphertext...),
	}
}
