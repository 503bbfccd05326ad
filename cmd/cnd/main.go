// File: cmd/cnd/main.go
// Author: momentics <momentics@gmail.com>
//
// cnd hosts a readiness reactor with a control socket.

package main

import (
	"fmt"
	"os"

	"github.com/momentics/cndevent/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "cnd:", err)
		os.Exit(1)
	}
}
