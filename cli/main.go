// Command scribe runs one command preset against a file from the shell.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	flag "github.com/spf13/pflag"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	scribe "github.com/Paranoid-AF/scribe"
	"github.com/Paranoid-AF/scribe/editor"
	"github.com/Paranoid-AF/scribe/format"
	"github.com/Paranoid-AF/scribe/generate"
	"github.com/Paranoid-AF/scribe/notify"
)

// Version is set at build time via -ldflags.
var Version = "dev"

type app struct {
	stdout io.Writer
	stderr io.Writer
	engine *generate.Engine
}

type options struct {
	command string
	file    string
	line    int
	col     int
	endLine int
	endCol  int
	write   bool
	copy    bool
	list    bool
	trace   bool
	verbose bool
	version bool
}

func main() {
	a := &app{stdout: os.Stdout, stderr: os.Stderr, engine: generate.NewEngine()}
	os.Exit(a.run(os.Args[1:]))
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	var o options
	fs := flag.NewFlagSet("scribe", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&o.command, "command", "c", "", "command preset to run (see --list)")
	fs.StringVarP(&o.file, "file", "f", "", "file to edit")
	fs.IntVarP(&o.line, "line", "l", 1, "cursor line (1-based)")
	fs.IntVar(&o.col, "col", 1, "cursor column in bytes (1-based)")
	fs.IntVar(&o.endLine, "end-line", 0, "selection end line (1-based, inclusive); selects from the cursor when set")
	fs.IntVar(&o.endCol, "end-col", 0, "selection end column (1-based, exclusive)")
	fs.BoolVarP(&o.write, "write", "w", false, "write the edited file back instead of printing it")
	fs.BoolVar(&o.copy, "copy", false, "copy shown messages to the clipboard")
	fs.BoolVar(&o.list, "list", false, "list available commands and exit")
	fs.BoolVar(&o.trace, "trace", false, "print trace spans to stderr")
	fs.BoolVarP(&o.verbose, "verbose", "v", false, "enable debug logging")
	fs.BoolVar(&o.version, "version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return &o, nil
}

func (a *app) run(args []string) int {
	o, err := parseFlags(args, a.stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if o.version {
		fmt.Fprintln(a.stdout, "scribe", Version)
		return 0
	}

	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level})))

	presets, err := generate.LoadPresets(scribe.CommandsPath())
	if err != nil {
		fmt.Fprintf(a.stderr, "scribe: %v\n", err)
		return 1
	}

	if o.list {
		for _, p := range generate.SortedPresets(presets) {
			fmt.Fprintf(a.stdout, "%-16s %-28s %s\n", p.Name, p.Spec.Mode.String()+"/"+p.Spec.Behavior.String(), p.Description)
		}
		return 0
	}

	if o.command == "" || o.file == "" {
		fmt.Fprintln(a.stderr, "scribe: --command and --file are required")
		return 2
	}
	preset, ok := presets[o.command]
	if !ok {
		fmt.Fprintf(a.stderr, "scribe: unknown command %q (see --list)\n", o.command)
		return 2
	}

	cfg, err := scribe.LoadConfig()
	if err != nil {
		fmt.Fprintf(a.stderr, "scribe: %v\n", err)
		return 1
	}
	cfg = scribe.Resolved(cfg)

	info, err := os.Stat(o.file)
	if err != nil {
		fmt.Fprintf(a.stderr, "scribe: %v\n", err)
		return 1
	}
	data, err := os.ReadFile(o.file)
	if err != nil {
		fmt.Fprintf(a.stderr, "scribe: %v\n", err)
		return 1
	}

	buf := editor.NewBuffer(string(data), contentType(o.file), format.New())
	if err := selectRange(buf, o); err != nil {
		fmt.Fprintf(a.stderr, "scribe: %v\n", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if o.trace {
		shutdown, err := initTracer(a.stderr)
		if err != nil {
			fmt.Fprintf(a.stderr, "scribe: %v\n", err)
			return 1
		}
		defer shutdown(context.Background())
	}

	var opts []notify.Option
	if o.copy {
		opts = append(opts, notify.WithClipboard())
	}
	n := notify.NewTerminal(a.stderr, opts...)

	out, err := a.engine.Execute(ctx, buf, n, preset.Spec, cfg)
	if err != nil {
		// already reported through the notifier
		return 1
	}
	if out.Op == generate.OpNone {
		return 0
	}

	if o.write {
		if err := os.WriteFile(o.file, []byte(buf.Text()), info.Mode().Perm()); err != nil {
			fmt.Fprintf(a.stderr, "scribe: %v\n", err)
			return 1
		}
		return 0
	}
	fmt.Fprint(a.stdout, buf.Text())
	return 0
}

// selectRange sets the buffer selection from the cursor flags.
func selectRange(buf *editor.Buffer, o *options) error {
	ctx := context.Background()
	snap, err := buf.Snapshot(ctx)
	if err != nil {
		return err
	}
	if o.line < 1 || o.line > len(snap.Lines) {
		return fmt.Errorf("--line %d out of range (file has %d lines)", o.line, len(snap.Lines))
	}
	start := snap.Offset(o.line-1, o.col-1)
	end := start
	if o.endLine > 0 {
		endCol := o.endCol
		if endCol <= 0 {
			// whole end line
			endCol = len(snap.Lines[min(o.endLine, len(snap.Lines))-1]) + 1
		}
		end = snap.Offset(o.endLine-1, endCol-1)
	}
	if end < start {
		return fmt.Errorf("selection end precedes its start")
	}
	return buf.SetSelection(ctx, editor.Span{Start: start, End: end})
}

var languageIDs = map[string]string{
	".go":   "go",
	".sh":   "sh",
	".bash": "bash",
	".mksh": "mksh",
	".bats": "bats",
	".py":   "python",
	".js":   "javascript",
	".ts":   "typescript",
	".rs":   "rust",
	".c":    "c",
	".h":    "c",
	".cpp":  "cpp",
	".java": "java",
	".rb":   "ruby",
	".lua":  "lua",
	".md":   "markdown",
}

// contentType maps a file name to an editor language id.
func contentType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if id, ok := languageIDs[ext]; ok {
		return id
	}
	return strings.TrimPrefix(ext, ".")
}

func initTracer(w io.Writer) (func(context.Context) error, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
	)

	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}
