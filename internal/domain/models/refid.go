package models

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// MintRefID creates the per-attempt gateway correlation id. Every attempt,
// including a retry after a transport failure, gets a fresh value.
func MintRefID() string {
	return "ref" + strconv.FormatInt(time.Now().Unix(), 10) + uuid.New().String()[:8]
}
