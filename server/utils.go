package server

import (
	"math/rand"

	uuid "github.com/satori/go.uuid"
)

// NewID returns a fresh player ID.
func NewID() string {
	return uuid.NewV4().String()
}

// NewGameID returns a short, human-shareable game code.
func NewGameID() string {
	letters := []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	code := make([]byte, 6)
	for i := range code {
		code[i] = letters[rand.Intn(len(letters))]
	}
	return string(code)
}
