package generator

import (
	"crypto/rand"
	"io"
	"math/big"
)

// TokenLength is the number of digits in a session token.
const TokenLength = 32

type Generator struct {
	randSource io.Reader
}

func NewGenerator() *Generator {
	return &Generator{randSource: rand.Reader}
}

// NewGeneratorFrom uses r as the entropy source.
func NewGeneratorFrom(r io.Reader) *Generator {
	return &Generator{randSource: r}
}

func (g *Generator) GetRandSource() io.Reader {
	return g.randSource
}

// GenerateToken returns TokenLength random digits in 1..9. Zero is never drawn, so a
// token can not collide with the "0" no-session marker.
func (g *Generator) GenerateToken() (string, error) {
	nine := big.NewInt(9)
	buf := make([]byte, TokenLength)
	for i := range buf {
		n, err := rand.Int(g.randSource, nine)
		if err != nil {
			return "", err
		}
		buf[i] = byte('1' + n.Int64())
	}
	return string(buf), nil
}
