package arena_test

import (
	"fmt"
	"os"
	"path/filepath"

	arena "github.com/ES98/Adaptive-Arena"
)

// Example_basicUsage demonstrates building a streaming arena, initializing
// its ring, and driving one producer/consumer cycle.
func Example_basicUsage() {
	dir, err := os.MkdirTemp("", "arena-example")
	if err != nil {
		fmt.Println("failed to create temp dir:", err)
		return
	}
	defer os.RemoveAll(dir)

	a, err := arena.NewBuilder().
		SetKey("example-session").
		SetPath(filepath.Join(dir, "session.bin")).
		SetMode(arena.ModeStreaming).
		Build()
	if err != nil {
		fmt.Println("failed to build arena:", err)
		return
	}
	defer a.Close()

	sa := a.(arena.StreamingArenaAPI)
	if err := sa.InitializeRing(64, 4096, 8); err != nil {
		fmt.Println("failed to initialize ring:", err)
		return
	}

	w := sa.AcquireWriteIndex()
	fmt.Println("wrote slot", w)

	r := sa.AcquireReadIndex()
	fmt.Println("read slot", r)

	fmt.Println("lag", sa.CurrentLag())

	// Output:
	// wrote slot 0
	// read slot 0
	// lag 0
}
