package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/glennswest/chatd/internal/accounts"
	"github.com/glennswest/chatd/internal/chat"
	"github.com/glennswest/chatd/internal/chatserver"
	"github.com/glennswest/chatd/internal/config"
	"github.com/glennswest/chatd/internal/starter"
	"github.com/glennswest/chatd/internal/store"
)

var Version = "1.0.0"

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	fs := flag.NewFlagSet("chatd", flag.ExitOnError)
	flags, err := config.Parse(fs, os.Args[1:])
	if err != nil {
		log.Fatalf("parsing flags: %v", err)
	}

	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	flags.Apply(cfg)

	log.Infof("Starting chatd v%s", Version)
	log.Infof("  listen: %s:%d", cfg.Self.Address, cfg.Self.Port)
	log.Infof("  manager: %s:%d", cfg.Manager.Address, cfg.Manager.Port)
	log.Infof("  store: %s", cfg.Store)

	s, err := store.Open(cfg.Store)
	if err != nil {
		log.Fatalf("opening store: %v", err)
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	acc, err := accounts.New(ctx, s)
	if err != nil {
		log.Fatalf("loading accounts: %v", err)
	}

	l, err := net.Listen("tcp", fmt.Sprintf("%s:%d", cfg.Self.Address, cfg.Self.Port))
	if err != nil {
		log.Fatalf("listening: %v", err)
	}

	srv := chatserver.New(l, acc, &chat.Counter{}, mgmtWriter())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("Shutting down...")
		cancel()
	}()

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// mgmtWriter recovers the management connection inherited from the starter
// on the descriptor named by starter.MgmtFDEnv, if present. A standalone
// chat server (no starter in front of it) runs with diagnostics disabled.
// The explicit nil return (rather than a nil *net.TCPConn boxed in an
// io.Writer) matters: chatserver.Server compares its mgmt field against
// nil to decide whether to skip diagnostics.
func mgmtWriter() io.Writer {
	raw := os.Getenv(starter.MgmtFDEnv)
	if raw == "" {
		return nil
	}
	fdNum, err := strconv.Atoi(raw)
	if err != nil {
		log.Warnf("invalid %s=%q, disabling diagnostics", starter.MgmtFDEnv, raw)
		return nil
	}

	f := os.NewFile(uintptr(fdNum), "mgmt")
	conn, err := net.FileConn(f)
	if err != nil {
		log.Warnf("recovering management descriptor: %v", err)
		return nil
	}
	return conn
}
