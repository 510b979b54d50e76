package app

import (
	"crypto/rand"
	"math/big"
)

const (
	quizIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	quizIDLength   = 5
)

// NewQuizID returns a short lowercase base36 id.
func NewQuizID() string {
	base := big.NewInt(int64(len(quizIDAlphabet)))
	buf := make([]byte, quizIDLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, base)
		if err != nil {
			panic(err)
		}
		buf[i] = quizIDAlphabet[n.Int64()]
	}
	return string(buf)
}
