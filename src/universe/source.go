package universe

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	mrand "math/rand/v2"
)

//Source provides uniformly distributed 64 bit values for the Random generator
type Source interface {
	Uint64() (uint64, error)
}

//ReaderSource draws big-endian values from an io.Reader
type ReaderSource struct {
	R io.Reader
}

//CryptoSource reads the operating system entropy
var CryptoSource Source = ReaderSource{R: rand.Reader}

func (s ReaderSource) Uint64() (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(s.R, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

//SeededSource is a deterministic source for reproducible runs
type SeededSource struct {
	r *mrand.Rand
}

//NewSeededSource creates the PCG backed source for the seed
func NewSeededSource(seed int64) *SeededSource {
	return &SeededSource{r: mrand.New(mrand.NewPCG(uint64(seed), 0))}
}

func (s *SeededSource) Uint64() (uint64, error) {
	return s.r.Uint64(), nil
}
