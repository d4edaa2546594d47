// Package main is the entry point of the grblesp controller.
// It initializes the logger, loads the configuration, wires the channels and
// the machine backend and serves the protocol until interrupted.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/apollo2030/grblesp/internal/core"
	"github.com/apollo2030/grblesp/internal/util"
)

func main() {
	// Optional .env for deployment overrides; absence is not an error.
	_ = godotenv.Load()

	cfgPath := flag.String("c", "configs/config.yml", "path to configuration file")
	logLevel := flag.String("log", "", "log level override (trace/debug/info/warn/error/off)")
	flag.Parse()

	level := *logLevel
	if level == "" {
		level = os.Getenv("GRBLESP_LOG_LEVEL")
	}
	util.SetupLogger(level)

	log.Infof("[main] using config: %s", *cfgPath)

	sys, err := core.NewSystem(*cfgPath)
	if err != nil {
		log.Fatalf("failed to create system: %v", err)
	}
	if err := sys.Start(); err != nil {
		log.Fatalf("failed to start system: %v", err)
	}

	// wait for Ctrl+C or SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("[main] shutting down...")
	sys.Stop()
	log.Info("[main] stopped cleanly")
}
