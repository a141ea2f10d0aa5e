// Package roomcode generates and checks the short codes players type to
// find a room.
package roomcode

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/mcdev12/sticks/go/internal/models"
)

// Alphabet leaves out I, O, 0 and 1.
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Length is the number of characters in a code.
const Length = 6

// Generator draws codes from a random source.
type Generator struct {
	rand io.Reader
}

// NewGenerator returns a generator reading from r, or crypto/rand when r is nil.
func NewGenerator(r io.Reader) *Generator {
	if r == nil {
		r = rand.Reader
	}
	return &Generator{rand: r}
}

// New returns a fresh code. Codes are not checked for uniqueness here.
func (g *Generator) New() (string, error) {
	var sb strings.Builder
	sb.Grow(Length)
	limit := big.NewInt(int64(len(Alphabet)))
	for range Length {
		n, err := rand.Int(g.rand, limit)
		if err != nil {
			return "", fmt.Errorf("failed to generate room code: %w", err)
		}
		sb.WriteByte(Alphabet[n.Int64()])
	}
	return sb.String(), nil
}

// Normalize upper-cases a typed code and checks it.
func Normalize(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !Valid(code) {
		return "", fmt.Errorf("%w: %q", models.ErrInvalidRoomCode, code)
	}
	return code, nil
}

// Valid reports whether code has the right length and alphabet.
func Valid(code string) bool {
	if len(code) != Length {
		return false
	}
	for i := 0; i < len(code); i++ {
		if !strings.ContainsRune(Alphabet, rune(code[i])) {
			return false
		}
	}
	return true
}
