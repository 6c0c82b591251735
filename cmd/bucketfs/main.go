package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/gops/agent"
	"go.uber.org/zap"

	_ "github.com/viant/afsc/s3"

	"github.com/viant/bucketfs/service"
)

func main() {
	startGops()
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "serve":
		serveCmd(os.Args[2:])
	case "ls":
		lsCmd(os.Args[2:])
	case "cat":
		catCmd(os.Args[2:])
	case "find":
		findCmd(os.Args[2:])
	case "grep":
		grepCmd(os.Args[2:])
	case "filter":
		filterCmd(os.Args[2:])
	case "cache":
		cacheCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: bucketfs <command> [options]")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  serve   Start the MCP tool server")
	fmt.Fprintln(os.Stderr, "  ls      List a bucket directory from the manifest")
	fmt.Fprintln(os.Stderr, "  cat     Print object content")
	fmt.Fprintln(os.Stderr, "  find    Find files by glob pattern")
	fmt.Fprintln(os.Stderr, "  grep    Search file content")
	fmt.Fprintln(os.Stderr, "  filter  Select files by manifest metadata")
	fmt.Fprintln(os.Stderr, "  cache   Show, warm or clear the local content cache")
}

func newService(ctx context.Context, configPath string, verbose bool) *service.Service {
	if configPath == "" {
		log.Fatal("config file is required (-config)")
	}
	cfg, err := service.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	return newServiceFromConfig(ctx, cfg, verbose)
}

func newServiceFromConfig(ctx context.Context, cfg *service.Config, verbose bool) *service.Service {
	var opts []service.Option
	if verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			log.Fatalf("logger: %v", err)
		}
		opts = append(opts, service.WithLogger(logger))
	}
	svc, err := service.New(ctx, cfg, opts...)
	if err != nil {
		log.Fatalf("service init: %v", err)
	}
	return svc
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func lsCmd(args []string) {
	flags := flag.NewFlagSet("ls", flag.ExitOnError)
	configPath := flags.String("config", "", "config yaml (required)")
	verbose := flags.Bool("verbose", false, "verbose logging")
	flags.Parse(args)

	ctx, cancel := signalContext()
	defer cancel()
	svc := newService(ctx, *configPath, *verbose)
	defer func() { _ = svc.Close() }()

	out, err := svc.List(ctx, service.ListRequest{Path: flags.Arg(0)})
	if err != nil {
		log.Fatalf("ls: %v", err)
	}
	for _, entry := range out.Entries {
		fmt.Println(entry)
	}
}

func catCmd(args []string) {
	flags := flag.NewFlagSet("cat", flag.ExitOnError)
	configPath := flags.String("config", "", "config yaml (required)")
	offset := flags.Int64("offset", 0, "byte offset to start reading at")
	length := flags.Int64("length", 0, "number of bytes to read (0 reads to the end)")
	verbose := flags.Bool("verbose", false, "verbose logging")
	flags.Parse(args)
	if flags.NArg() != 1 {
		log.Fatal("cat: exactly one path or uri is required")
	}

	ctx, cancel := signalContext()
	defer cancel()
	svc := newService(ctx, *configPath, *verbose)
	defer func() { _ = svc.Close() }()

	req := service.ReadRequest{Offset: *offset, Length: *length}
	if arg := flags.Arg(0); len(arg) > 0 && containsScheme(arg) {
		req.URI = arg
	} else {
		req.Path = arg
	}
	out, err := svc.Read(ctx, req)
	if err != nil {
		log.Fatalf("cat: %v", err)
	}
	_, _ = os.Stdout.Write(out.Content)
}

func findCmd(args []string) {
	flags := flag.NewFlagSet("find", flag.ExitOnError)
	configPath := flags.String("config", "", "config yaml (required)")
	path := flags.String("path", "", "restrict matching to keys under this prefix")
	offset := flags.Int("offset", 0, "skip first N matches")
	limit := flags.Int("limit", 0, "cap number of matches (0 means no cap)")
	verbose := flags.Bool("verbose", false, "verbose logging")
	flags.Parse(args)
	if flags.NArg() != 1 {
		log.Fatal("find: exactly one glob is required")
	}

	ctx, cancel := signalContext()
	defer cancel()
	svc := newService(ctx, *configPath, *verbose)
	defer func() { _ = svc.Close() }()

	out, err := svc.Find(ctx, service.FindRequest{Glob: flags.Arg(0), Path: *path, Offset: *offset, Limit: *limit})
	if err != nil {
		log.Fatalf("find: %v", err)
	}
	for _, uri := range out.URIs {
		fmt.Println(uri)
	}
}

func grepCmd(args []string) {
	flags := flag.NewFlagSet("grep", flag.ExitOnError)
	configPath := flags.String("config", "", "config yaml (required)")
	path := flags.String("path", "", "restrict search to keys under this prefix")
	glob := flags.String("glob", "", "restrict search to files matching this glob")
	caseSensitive := flags.Bool("case", false, "case sensitive matching")
	maxResults := flags.Int("max", 0, "cap number of matches")
	verbose := flags.Bool("verbose", false, "verbose logging")
	flags.Parse(args)
	if flags.NArg() != 1 {
		log.Fatal("grep: exactly one pattern is required")
	}

	ctx, cancel := signalContext()
	defer cancel()
	svc := newService(ctx, *configPath, *verbose)
	defer func() { _ = svc.Close() }()

	out, err := svc.Grep(ctx, service.GrepRequest{
		Pattern:       flags.Arg(0),
		CaseSensitive: *caseSensitive,
		Path:          *path,
		Glob:          *glob,
		MaxResults:    *maxResults,
	})
	if err != nil {
		log.Fatalf("grep: %v", err)
	}
	for _, line := range out.Lines {
		fmt.Println(line)
	}
	if out.Outcome != "Completed" {
		log.Fatalf("grep: search %s", out.Outcome)
	}
}

func filterCmd(args []string) {
	flags := flag.NewFlagSet("filter", flag.ExitOnError)
	configPath := flags.String("config", "", "config yaml (required)")
	minSize := flags.Int64("min-size", -1, "minimum size in bytes")
	maxSize := flags.Int64("max-size", -1, "maximum size in bytes")
	after := flags.String("after", "", "modified after (RFC3339)")
	before := flags.String("before", "", "modified before (RFC3339)")
	class := flags.String("class", "", "storage class")
	keyRegexp := flags.String("key-regexp", "", "key regular expression")
	offset := flags.Int("offset", 0, "skip first N matches")
	limit := flags.Int("limit", 0, "cap number of matches (0 means no cap)")
	verbose := flags.Bool("verbose", false, "verbose logging")
	flags.Parse(args)

	ctx, cancel := signalContext()
	defer cancel()
	svc := newService(ctx, *configPath, *verbose)
	defer func() { _ = svc.Close() }()

	req := service.FilterRequest{StorageClass: *class, KeyRegexp: *keyRegexp, Offset: *offset, Limit: *limit}
	if *minSize >= 0 {
		req.MinSize = minSize
	}
	if *maxSize >= 0 {
		req.MaxSize = maxSize
	}
	if *after != "" {
		parsed, err := time.Parse(time.RFC3339, *after)
		if err != nil {
			log.Fatalf("filter: -after: %v", err)
		}
		req.ModifiedAfter = &parsed
	}
	if *before != "" {
		parsed, err := time.Parse(time.RFC3339, *before)
		if err != nil {
			log.Fatalf("filter: -before: %v", err)
		}
		req.ModifiedBefore = &parsed
	}
	out, err := svc.Filter(ctx, req)
	if err != nil {
		log.Fatalf("filter: %v", err)
	}
	for _, object := range out.Files {
		size := int64(0)
		if object.Size != nil {
			size = *object.Size
		}
		modified := ""
		if object.LastModified != nil {
			modified = object.LastModified.UTC().Format(time.RFC3339)
		}
		fmt.Printf("%s\t%d\t%s\t%s\n", object.Key, size, modified, object.StorageClass)
	}
}

func cacheCmd(args []string) {
	flags := flag.NewFlagSet("cache", flag.ExitOnError)
	configPath := flags.String("config", "", "config yaml (required)")
	glob := flags.String("glob", "", "glob to warm (required for warm)")
	path := flags.String("path", "", "restrict warm-up to keys under this prefix")
	verbose := flags.Bool("verbose", false, "verbose logging")
	flags.Parse(args)

	action := flags.Arg(0)
	if action == "" {
		action = "stats"
	}

	ctx, cancel := signalContext()
	defer cancel()
	svc := newService(ctx, *configPath, *verbose)
	defer func() { _ = svc.Close() }()

	switch action {
	case "stats":
	case "clear":
		if err := svc.ClearCache(ctx); err != nil {
			log.Fatalf("cache clear: %v", err)
		}
	case "warm":
		if *glob == "" {
			log.Fatal("cache warm: -glob is required")
		}
		task := svc.Warm(ctx, service.WarmRequest{Glob: *glob, Path: *path})
		result, err := task.Wait(ctx)
		if err != nil {
			log.Fatalf("cache warm: %v", err)
		}
		warm := result.(*service.WarmResult)
		fmt.Printf("requested=%d cached=%d failed=%d\n", warm.Requested, warm.Cached, warm.Failed)
	default:
		log.Fatalf("cache: unsupported action %q", action)
	}
	stats := svc.CacheStats()
	fmt.Printf("entries=%d resident=%d capacity=%d utilization=%.1f%%\n",
		stats.Entries, stats.ResidentBytes, stats.CapacityBytes, stats.UtilizationPercent)
}

func containsScheme(arg string) bool {
	for i := 0; i+2 < len(arg); i++ {
		if arg[i] == ':' && arg[i+1] == '/' && arg[i+2] == '/' {
			return i > 0
		}
		if !isSchemeChar(arg[i]) {
			return false
		}
	}
	return false
}

func isSchemeChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'
}

func startGops() {
	if err := agent.Listen(agent.Options{ShutdownCleanup: true}); err != nil {
		log.Printf("gops: %v", err)
	}
}
