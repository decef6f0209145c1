// Package main runs a standalone JetStream-enabled NATS server for trying
// multi-process sampling locally.
//
// Start it, export the printed NATS_URL and start RANKS copies of
// examples/basic against it. JetStream data lives in a temporary directory
// removed on exit.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats-server/v2/server"
)

func main() {
	host := flag.String("host", "127.0.0.1", "address to listen on")
	port := flag.Int("port", -1, "port to listen on (-1 picks a free port)")
	flag.Parse()

	storeDir, err := os.MkdirTemp("", "randcells-nats-")
	if err != nil {
		log.Fatal("Failed to create JetStream store directory:", err)
	}

	code := run(*host, *port, storeDir)
	_ = os.RemoveAll(storeDir) // best effort

	os.Exit(code)
}

func run(host string, port int, storeDir string) int {
	srv, err := server.NewServer(&server.Options{
		Host:      host,
		Port:      port,
		JetStream: true,
		StoreDir:  storeDir,
		NoLog:     true,
		NoSigs:    true,
	})
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to create NATS server: %v\n", err)
		return 1
	}

	go srv.Start()

	if !srv.ReadyForConnections(10 * time.Second) {
		_, _ = fmt.Fprintln(os.Stderr, "NATS server not ready within timeout")
		return 1
	}

	fmt.Printf("NATS_URL=%s\n", srv.ClientURL())
	_, _ = fmt.Fprintf(os.Stderr, "JetStream store: %s (PID: %d)\n", storeDir, os.Getpid())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	_, _ = fmt.Fprintln(os.Stderr, "Shutting down NATS server...")
	srv.Shutdown()
	srv.WaitForShutdown()

	return 0
}
