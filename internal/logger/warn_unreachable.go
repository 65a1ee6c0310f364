package logger

import (
	"fmt"
	"os"
	"sync"
)

var once sync.Once

func WarnUnreachable(baseURL string) {
	once.Do(func() {
		fmt.Fprintf(os.Stderr, "⚠️ Unable to reach the scoring server at %s.\n", baseURL)
		fmt.Fprintln(os.Stderr, "🧠 Set SEMANTLE_SERVER_URL (or pass --server) to the address of a running scoring server.")
	})
}
