package core

import (
	"fmt"
	"math/rand"
	"time"
)

// NewTransactionID fabricates a Hedera-style transaction identifier:
// {shard}.{realm}.{sequence}@{unix-seconds}.{nanos}. Shard and realm are
// fixed at 0. Purely decorative; uniqueness is not guaranteed.
func NewTransactionID(rng *rand.Rand, now time.Time) string {
	seq := rng.Intn(100000) + 10000
	nanos := rng.Intn(1000000000)
	return fmt.Sprintf("0.0.%d@%d.%d", seq, now.Unix(), nanos)
}
