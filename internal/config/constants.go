package config

import "time"

// Storage backends.
const (
	BackendBolt   = "bolt"
	BackendMemory = "memory"
)

// Display and paging defaults.
const (
	DefaultDecimals = uint8(18)
	MaxDecimals     = uint8(77) // 10^77 is the largest power of ten below 2^256
	DefaultPageSize = 20
)

// StoreOpenTimeout bounds how long the CLI waits for the data file lock.
const StoreOpenTimeout = 2 * time.Second
