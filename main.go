/*
This is an example of application that will use the
engine package to test things out
*/
package main

import (
	"errors"
	"flag"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/anima2d/engine"
	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
	"github.com/spaghettifunk/anima2d/testbed"
)

func main() {
	configPath := flag.String("config", "anima2d.toml", "application config file")
	backend := flag.String("backend", "", "override the renderer backend (opengl, ebiten)")
	flag.Parse()

	config, err := engine.LoadApplicationConfig(*configPath)
	if errors.Is(err, fs.ErrNotExist) {
		core.LogWarn("config '%s' not found, using defaults", *configPath)
		config = engine.DefaultApplicationConfig()
		config.Name = "Anima2D Testbed"
	} else if err != nil {
		panic(err)
	}
	if *backend != "" {
		config.Backend = metadata.RendererBackendType(*backend)
	}

	tb, err := testbed.NewTestGame(config)
	if err != nil {
		panic(err)
	}

	engine, err := engine.New(tb.Game)
	if err != nil {
		panic(err)
	}

	if err := engine.Initialize(); err != nil {
		panic(err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// a signal asks the loop to stop; shutdown runs on the main thread
	go func() {
		<-sigCh
		core.EventFire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
	}()

	// run engine
	if err := engine.Run(); err != nil {
		panic(err)
	}
	if err := engine.Shutdown(); err != nil {
		panic(err)
	}
}
