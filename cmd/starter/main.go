package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/glennswest/chatd/internal/config"
	"github.com/glennswest/chatd/internal/starter"
)

var Version = "1.0.0"

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	fs := flag.NewFlagSet("chatd-starter", flag.ExitOnError)
	flags, err := config.Parse(fs, os.Args[1:])
	if err != nil {
		log.Fatalf("parsing flags: %v", err)
	}
	childPath := flags.ChildPath
	if childPath == "" {
		childPath = "chatd"
	}

	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	flags.Apply(cfg)

	log.Infof("Starting chatd-starter v%s", Version)
	log.Infof("  manager: %s:%d", cfg.Manager.Address, cfg.Manager.Port)
	log.Infof("  child binary: %s", childPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("Shutting down...")
		cancel()
	}()

	addr := fmt.Sprintf("%s:%d", cfg.Manager.Address, cfg.Manager.Port)
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		log.Fatalf("connecting to manager at %s: %v", addr, err)
	}
	defer conn.Close()

	childArgs := []string{
		"-a", cfg.Self.Address,
		"-p", fmt.Sprintf("%d", cfg.Self.Port),
		"-store", cfg.Store,
	}
	coord := starter.New(childPath, childArgs)

	if err := coord.Run(ctx, conn); err != nil {
		log.Fatalf("starter: %v", err)
	}
}
