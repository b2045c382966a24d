package core

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

var lastTransactionID atomic.Int64

// NewTransactionID returns the creation time in milliseconds, bumped when
// needed so ids handed out by this process are strictly increasing.
func NewTransactionID() string {
	for {
		prev := lastTransactionID.Load()
		next := time.Now().UnixMilli()
		if next <= prev {
			next = prev + 1
		}
		if lastTransactionID.CompareAndSwap(prev, next) {
			return strconv.FormatInt(next, 10)
		}
	}
}

// NewSectionID returns a fresh custom section id.
func NewSectionID() string {
	return uuid.NewString()
}
