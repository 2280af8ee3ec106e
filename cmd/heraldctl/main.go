// Command heraldctl manages the notification configuration and evaluates events against it.
package main

import (
	"fmt"
	"os"

	"github.com/heraldhq/herald/services/notification"
)

func main() {
	app := createApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps store errors to distinct exit statuses.
func exitCode(err error) int {
	switch notification.Code(err) {
	case notification.CodeOK:
		return 0
	case notification.CodeValidation:
		return 2
	case notification.CodeConflict:
		return 3
	case notification.CodeNotFound:
		return 4
	case notification.CodeParse:
		return 5
	case notification.CodeIO:
		return 6
	case notification.CodeLockTimeout:
		return 7
	default:
		return 1
	}
}
