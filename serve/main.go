// Command scribed is the scribe daemon.
//
// The editor plugin sends one JSON request per connection over a Unix
// socket. scribed dials back into the requesting Neovim instance, runs the
// named command preset against its buffer and answers with the new
// selection. SIGHUP reloads the config file and the presets.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	flag "github.com/spf13/pflag"
)

// Version is set at build time via -ldflags.
var Version = "dev"

type daemonOptions struct {
	socket   string
	config   string
	commands string
	verbose  bool
	version  bool
}

func parseFlags(args []string, stderr io.Writer) (*daemonOptions, error) {
	var o daemonOptions
	fs := flag.NewFlagSet("scribed", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&o.socket, "socket", "s", "", "socket path (default $SCRIBE_SOCKET, then $XDG_RUNTIME_DIR/scribe.sock)")
	fs.StringVar(&o.config, "config", "", "config file (default <config dir>/config.toml)")
	fs.StringVar(&o.commands, "commands", "", "command presets file (default <config dir>/commands.toml)")
	fs.BoolVarP(&o.verbose, "verbose", "v", false, "log every request and response")
	fs.BoolVar(&o.version, "version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return &o, nil
}

func main() {
	o, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}
	if o.version {
		fmt.Println("scribed", Version)
		return
	}

	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := serve(o); err != nil {
		slog.Error("scribed stopped", "error", err)
		os.Exit(1)
	}
}

func serve(o *daemonOptions) error {
	socketPath := resolveSocketPath(o.socket)
	srv, err := NewServer(socketPath, o.config, o.commands)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", socketPath, err)
	}
	defer srv.Close()

	warnings, err := srv.Warnings()
	if err != nil {
		// commands fail with not_configured until the file is fixed
		slog.Warn("config unreadable", "error", err)
	}
	for _, w := range warnings {
		slog.Warn("config", "warning", w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	go func() {
		for {
			select {
			case <-ctx.Done():
				srv.Close()
				return
			case <-hup:
				if _, err := srv.Reload(); err != nil {
					slog.Warn("reload failed, keeping previous presets", "error", err)
					continue
				}
				slog.Info("reloaded")
			}
		}
	}()

	slog.Info("listening", "socket", socketPath, "version", Version)
	err = srv.Serve()
	if ctx.Err() != nil && errors.Is(err, net.ErrClosed) {
		slog.Info("shut down")
		return nil
	}
	return err
}

// resolveSocketPath picks the socket the editor plugin connects to. The
// flag wins over $SCRIBE_SOCKET, then $XDG_RUNTIME_DIR, then a per-user
// path under /tmp.
func resolveSocketPath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	if path := os.Getenv("SCRIBE_SOCKET"); path != "" {
		return path
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "scribe.sock")
	}
	return fmt.Sprintf("/tmp/scribe-%d.sock", os.Getuid())
}
