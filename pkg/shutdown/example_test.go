package shutdown_test

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jihwankim/kinda/pkg/shutdown"
)

// Example demonstrates shutdown controller usage.
func Example() {
	controller := shutdown.New(shutdown.Config{
		StopFile:             "/tmp/kinda-stop-test",
		PollInterval:         1 * time.Second,
		EnableSignalHandlers: false,
	})

	os.Remove(controller.GetStopFilePath())

	controller.OnStop(func(ctx context.Context) {
		fmt.Println("shutdown triggered")
		fmt.Println("flushing session state")
		fmt.Println("done")
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	controller.Start(ctx)

	fmt.Println("controller started, watching for stop request")
	fmt.Println("create stop file to trigger shutdown:")
	fmt.Printf("  touch %s\n", controller.GetStopFilePath())

	select {
	case <-controller.StopChannel():
		fmt.Println("stop detected via channel")
	case <-time.After(3 * time.Second):
		fmt.Println("no stop triggered (timeout)")
	}

	os.Remove(controller.GetStopFilePath())

	// Output:
	// controller started, watching for stop request
	// create stop file to trigger shutdown:
	//   touch /tmp/kinda-stop-test
	// no stop triggered (timeout)
}
