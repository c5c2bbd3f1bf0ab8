// Package daemon runs watch-folder ingestion as a long-lived process with a
// control socket: one instance per machine, queryable status, remote stop.
package daemon

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net"
	"sync/atomic"
	"time"

	"github.com/clinscribe/clinscribe/internal/bus"
	"github.com/clinscribe/clinscribe/internal/report"
	"github.com/clinscribe/clinscribe/internal/transcriber"
	"github.com/clinscribe/clinscribe/internal/watch"
)

// Daemon wraps a folder watcher with the control socket. It interposes on
// the watcher's runner to count processed and failed recordings for status
// reporting.
type Daemon struct {
	runner watch.Runner
	opts   watch.Options

	processed atomic.Int64
	failed    atomic.Int64
	startedAt time.Time

	cancel context.CancelFunc
}

func New(runner watch.Runner, opts watch.Options) *Daemon {
	return &Daemon{runner: runner, opts: opts}
}

// Run blocks until ctx is cancelled, a stop command arrives over the control
// socket, or the watcher fails.
func (d *Daemon) Run(ctx context.Context) error {
	if err := bus.CheckExistingDaemon(); err != nil {
		return err
	}

	ln, err := bus.Listen()
	if err != nil {
		return err
	}
	defer ln.Close()

	if err := bus.CreatePidFile(); err != nil {
		return fmt.Errorf("failed to create PID file: %w", err)
	}
	defer bus.RemovePidFile()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	d.cancel = cancel
	d.startedAt = time.Now()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	go d.acceptLoop(ctx, ln)

	log.Printf("daemon: watching %s, control socket up", d.opts.Dir)

	err = watch.New(&countingRunner{d: d}, d.opts).Run(ctx)
	if ctx.Err() != nil {
		return nil // stopped via signal or control socket
	}
	return err
}

// countingRunner delegates to the real pipeline while keeping the daemon's
// status counters current.
type countingRunner struct {
	d *Daemon
}

func (r *countingRunner) Run(ctx context.Context, req *transcriber.Request) (*report.Report, error) {
	rep, err := r.d.runner.Run(ctx, req)
	if err != nil {
		r.d.failed.Add(1)
		return nil, err
	}
	r.d.processed.Add(1)
	return rep, nil
}

func (d *Daemon) acceptLoop(ctx context.Context, ln net.Listener) {
	for {
		c, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("daemon: accept error: %v", err)
			return
		}
		go d.handle(c)
	}
}

func (d *Daemon) handle(c net.Conn) {
	defer c.Close()

	line, err := bufio.NewReader(c).ReadString('\n')
	if err != nil {
		log.Printf("daemon: client read error: %v", err)
		fmt.Fprintf(c, "ERR read_error: %v\n", err)
		return
	}
	if len(line) == 0 {
		fmt.Fprint(c, "ERR empty\n")
		return
	}

	switch line[0] {
	case bus.CmdStatus:
		fmt.Fprintf(c, "STATUS dir=%s processed=%d failed=%d uptime=%s\n",
			d.opts.Dir, d.processed.Load(), d.failed.Load(),
			time.Since(d.startedAt).Round(time.Second))
	case bus.CmdVersion:
		fmt.Fprintf(c, "STATUS proto=%s\n", bus.ProtoVer)
	case bus.CmdStop:
		fmt.Fprint(c, "OK stopping\n")
		d.cancel()
	default:
		log.Printf("daemon: unknown command: %c", line[0])
		fmt.Fprintf(c, "ERR unknown=%q\n", line[0])
	}
}
