// Command snipctl is the operator CLI of the snippet activity service.
package main

import (
	"os"

	"github.com/sakif/snippet-activity/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
