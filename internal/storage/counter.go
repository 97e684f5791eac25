package storage

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/core/domain"
)

const counterEncodedLen = 16

// encodeCounter packs a counter as count (8 bytes) followed by the reset
// time in Unix nanoseconds (8 bytes), both big endian.
func encodeCounter(c domain.Counter) []byte {
	b := make([]byte, counterEncodedLen)
	binary.BigEndian.PutUint64(b[0:8], uint64(c.Count))
	binary.BigEndian.PutUint64(b[8:16], uint64(c.ResetAt.UnixNano()))
	return b
}

func decodeCounter(b []byte) (domain.Counter, error) {
	if len(b) != counterEncodedLen {
		return domain.Counter{}, fmt.Errorf("storage: counter value has %d bytes, want %d", len(b), counterEncodedLen)
	}
	return domain.Counter{
		Count:   int64(binary.BigEndian.Uint64(b[0:8])),
		ResetAt: time.Unix(0, int64(binary.BigEndian.Uint64(b[8:16]))),
	}, nil
}
