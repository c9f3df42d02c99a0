package util

import (
	"time"

	"github.com/google/uuid"
)

// NewID gera identificador UUID v4 em formato string.
func NewID() string {
	return uuid.NewString()
}

// Now retorna o instante atual em UTC.
func Now() time.Time {
	return time.Now().UTC()
}
