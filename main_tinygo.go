//go:build tinygo && baremetal

package main

import (
	"context"
	"time"

	"anddesk/app"
	"anddesk/desk/config"
	"anddesk/hal"
)

func main() {
	log := hal.NewHostLogger()
	opts := app.Options{Config: config.Default(), Log: log}

	b, err := hal.OpenMCUBus()
	if err != nil {
		log.WriteLineString("main: bus init failed, going headless: " + err.Error())
	} else {
		opts.IO = b
	}

	a, err := app.Build(opts)
	if err != nil {
		log.WriteLineString("main: " + err.Error())
		return
	}
	_ = a.Run(context.Background(), 20*time.Millisecond)
}
