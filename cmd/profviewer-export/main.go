// Command profviewer-export pulls a profile viewer's full event history
// over HTTP and writes it out as newline-delimited JSON (NVTXW-style),
// one line per opened/closed stream and per event.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/url"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/StanfordLegion/prof-viewer-go/internal/httpsource"
	"github.com/StanfordLegion/prof-viewer-go/internal/nvtxw"
	"github.com/StanfordLegion/prof-viewer-go/internal/progress"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var (
		server      string
		output      string
		zeroTime    int64
		concurrency int
		verbose     bool
		showVersion bool
		cpuProfile  string
	)

	flag.StringVar(&server, "server", "", "Profile viewer server base URL")
	flag.StringVar(&output, "output", "", "Output NDJSON file (default: stdout)")
	flag.Int64Var(&zeroTime, "zero-time", 0, "Value added to every exported timestamp")
	flag.IntVar(&concurrency, "concurrency", runtime.NumCPU(), "Maximum in-flight HTTP requests")
	flag.BoolVar(&verbose, "verbose", false, "Log HTTP fetch diagnostics to stderr")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.StringVar(&cpuProfile, "cpuprofile", "", "Write CPU profile to file")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: profviewer-export -server <url> [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Export a profile viewer data source's full event history as NDJSON.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("profviewer-export %s (commit %s)\n", version, commit)
		os.Exit(0)
	}

	if server == "" {
		flag.Usage()
		os.Exit(1)
	}

	if cpuProfile != "" {
		f, err := os.Create(cpuProfile)
		if err != nil {
			log.Fatalf("Creating CPU profile: %v", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatalf("Starting CPU profile: %v", err)
		}
		defer pprof.StopCPUProfile()
	}

	base, err := url.Parse(server)
	if err != nil {
		log.Fatalf("Parsing -server URL: %v", err)
	}

	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	client := httpsource.New(base,
		httpsource.WithLogger(logger),
		httpsource.WithConcurrencyLimit(concurrency),
		httpsource.WithUserAgent(fmt.Sprintf("profviewer-export/%s", version)),
	)

	out := os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			log.Fatalf("Creating %s: %v", output, err)
		}
		defer f.Close()
		out = f
	}

	sink := nvtxw.NewNDJSONSink(out)
	exporter := nvtxw.NewExporter(client, sink, zeroTime, logger)
	if !verbose {
		exporter.Progress = progress.New("export", "rows", 0)
	}

	start := time.Now()
	if err := exporter.Export(); err != nil {
		log.Fatalf("Export failed: %v", err)
	}
	if verbose {
		log.Printf("done in %s", time.Since(start).Truncate(time.Second))
	}
}
