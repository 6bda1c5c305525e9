// Command hatool reads or sets the state of a Home Assistant entity using a
// bearer token kept in the desktop secret store.
//
//	hatool -e switch.porch            # print the current state
//	hatool -e switch.porch -s on      # turn it on
//	hatool --store < token.txt        # save the token for the configured server
//	hatool --forget                   # remove it again
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/goliatone/go-hatool/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := app.Run(ctx, os.Args[1:], app.Dependencies{})
	stop()
	os.Exit(code)
}
