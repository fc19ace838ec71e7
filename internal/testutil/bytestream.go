// Package testutil holds helpers shared by fuzz tests.
package testutil

// ByteStream derives values from fuzz input, one byte at a time.
//
// Reads past the end return zero values, so the same input always yields the
// same sequence.
type ByteStream struct {
	bytes []byte
	pos   int
}

// NewByteStream returns a stream over b.
func NewByteStream(b []byte) *ByteStream {
	return &ByteStream{bytes: b}
}

// HasMore reports whether unread bytes remain.
func (s *ByteStream) HasMore() bool {
	return s.pos < len(s.bytes)
}

// NextByte returns the next byte, or 0 if exhausted.
func (s *ByteStream) NextByte() byte {
	if s.pos >= len(s.bytes) {
		return 0
	}

	v := s.bytes[s.pos]
	s.pos++

	return v
}

// NextInt returns a value in [0, maxVal), or 0 if maxVal <= 0.
func (s *ByteStream) NextInt(maxVal int) int {
	if maxVal <= 0 {
		return 0
	}

	return int(s.NextByte()) % maxVal
}

// NextID returns a record id in [0, limit).
func (s *ByteStream) NextID(limit int64) int64 {
	return int64(s.NextInt(int(limit)))
}

// NextToken returns a token id in [0, limit).
func (s *ByteStream) NextToken(limit uint32) uint32 {
	return uint32(s.NextInt(int(limit)))
}

// NextBool returns a boolean derived from the next byte.
func (s *ByteStream) NextBool() bool {
	return s.NextByte()&1 == 1
}
