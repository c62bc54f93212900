package store

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// globalIDAlphabet is the 64-character alphabet of compressed GlobalIds.
const globalIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz_$"

// DecodeGlobalID decodes a 22-character compressed GlobalId, or a canonical
// UUID string, into a UUID.
func DecodeGlobalID(s string) (uuid.UUID, error) {
	if len(s) != 22 {
		u, err := uuid.Parse(s)
		if err != nil {
			return uuid.Nil, fmt.Errorf("global id %q: %w", s, err)
		}
		return u, nil
	}
	var u uuid.UUID
	// first character holds the top 2 bits, then 21 characters of 6 bits
	bits := make([]byte, 0, 22)
	for i := 0; i < len(s); i++ {
		v := strings.IndexByte(globalIDAlphabet, s[i])
		if v < 0 || (i == 0 && v > 3) {
			return uuid.Nil, fmt.Errorf("global id %q: invalid character %q", s, s[i])
		}
		bits = append(bits, byte(v))
	}
	// accumulate into a 128-bit big-endian number
	var hi, lo uint64
	push := func(v uint64, n uint) {
		hi = hi<<n | lo>>(64-n)
		lo = lo<<n | v
	}
	push(uint64(bits[0]), 2)
	for _, b := range bits[1:] {
		push(uint64(b), 6)
	}
	for i := 0; i < 8; i++ {
		u[i] = byte(hi >> (56 - 8*uint(i)))
		u[8+i] = byte(lo >> (56 - 8*uint(i)))
	}
	return u, nil
}

// EncodeGlobalID returns the 22-character compressed form of u.
func EncodeGlobalID(u uuid.UUID) string {
	var hi, lo uint64
	for i := 0; i < 8; i++ {
		hi = hi<<8 | uint64(u[i])
		lo = lo<<8 | uint64(u[8+i])
	}
	out := make([]byte, 22)
	for i := 21; i >= 1; i-- {
		out[i] = globalIDAlphabet[lo&63]
		lo = lo>>6 | hi<<58
		hi >>= 6
	}
	out[0] = globalIDAlphabet[lo&3]
	return string(out)
}
