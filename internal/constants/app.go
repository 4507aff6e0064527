package constants

import (
	"time"
)

// Copy run shape
const (
	// DefaultFileCount - number of source files (and workers) in one run.
	// The run never starts unless exactly this many sources are selected.
	// Overridable through the file_count config key.
	DefaultFileCount = 4

	// MaxFileCount - upper bound accepted for file_count.
	// One goroutine and one progress bar per file, so keep it small.
	MaxFileCount = 16

	// ChunkSize - default bytes read and written per copy step (2 KiB).
	// Every chunk produces one per-file and one total progress update.
	ChunkSize = 2048

	// MinChunkSize - smallest chunk_size accepted by config validation
	MinChunkSize = 512

	// MaxChunkSize - largest chunk_size accepted by config validation (16 MiB)
	MaxChunkSize = 16 * 1024 * 1024
)

// Disk space safety margin
const (
	// DiskSpaceBufferPercent - additional space to require beyond the
	// summed source sizes (15%)
	DiskSpaceBufferPercent = 0.15
)

// Event System
const (
	// EventBusDefaultBuffer - default buffer size for event channels (1000)
	EventBusDefaultBuffer = 1000

	// EventBusMaxBuffer - maximum buffer size for high-throughput scenarios (5000)
	EventBusMaxBuffer = 5000
)

// UI Updates
const (
	// ProgressUpdateInterval - interval for GUI progress bar flushes (250ms)
	// Balances responsiveness with performance; a 2 KiB chunk size would
	// otherwise mean thousands of widget refreshes per second.
	ProgressUpdateInterval = 250 * time.Millisecond

	// TerminalRefreshRate - mpb redraw interval (~3 times per second)
	TerminalRefreshRate = 300 * time.Millisecond
)

// Shutdown
const (
	// ShutdownGracePeriod - how long the CLI and GUI wait for in-flight
	// workers on exit before abandoning them
	ShutdownGracePeriod = 10 * time.Second
)
