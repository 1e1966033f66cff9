package crypto

import (
	"crypto/rand"
	"crypto/sha512"
	"encoding/base64"
	"io"
)

// GenerateRandomString returns a random URL-safe string of the given length.
func GenerateRandomString(length int) (string, error) {
	return generateRandomString(length, rand.Reader)
}

func generateRandomString(length int, rng io.Reader) (string, error) {
	bytes := make([]byte, length+length/2+1)
	if _, err := io.ReadFull(rng, bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes)[:length], nil
}

// getRandReader returns a randomness source. With a seed it is a
// deterministic stream so that certificate generation is reproducible
// for the same key; without one it is crypto/rand.
func getRandReader(seed string) io.Reader {
	if seed == "" {
		return rand.Reader
	}
	return newDRand(seed)
}

func newDRand(seed string) io.Reader {
	return &dRand{next: []byte(seed)}
}

type dRand struct {
	next []byte
}

func (d *dRand) cycle() []byte {
	result := sha512.Sum512(d.next)
	d.next = result[:sha512.Size/2]
	return result[sha512.Size/2:]
}

func (d *dRand) Read(b []byte) (int, error) {
	n := 0
	for n < len(b) {
		out := d.cycle()
		n += copy(b[n:], out)
	}
	return n, nil
}
