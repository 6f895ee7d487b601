package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/gops/agent"
	"github.com/viant/docanchor/anchor"
	"github.com/viant/docanchor/document"
	"github.com/viant/docanchor/service"
	"github.com/viant/docanchor/store"
)

func main() {
	startGops()
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "ingest":
		ingestCmd(os.Args[2:])
	case "anchors":
		anchorsCmd(os.Args[2:])
	case "facts":
		factsCmd(os.Args[2:])
	case "schedule":
		scheduleCmd(os.Args[2:])
	case "runs":
		runsCmd(os.Args[2:])
	case "search":
		searchCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: docanchor <command> [options]")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  ingest    Ingest a document version into SQLite")
	fmt.Fprintln(os.Stderr, "  anchors   List a version's anchors")
	fmt.Fprintln(os.Stderr, "  facts     List a version's extracted facts")
	fmt.Fprintln(os.Stderr, "  schedule  Show a version's schedule-of-activities matrix")
	fmt.Fprintln(os.Stderr, "  runs      Show a version's ingestion run history")
	fmt.Fprintln(os.Stderr, "  search    Rank a version's chunks against a query")
}

func newService(configPath, dbPath string) *service.Service {
	ctx := context.Background()
	cfg := service.DefaultConfig()
	if configPath != "" {
		loaded, err := service.LoadConfig(ctx, configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		cfg = *loaded
	}
	if dbPath != "" {
		cfg.DB = dbPath
	}
	if cfg.DB == "" {
		log.Fatalf("db path required (use --db or config)")
	}
	svc, err := service.New(service.WithConfig(cfg))
	if err != nil {
		log.Fatalf("service init: %v", err)
	}
	return svc
}

func ingestCmd(args []string) {
	flags := flag.NewFlagSet("ingest", flag.ExitOnError)
	dbPath := flags.String("db", "", "SQLite database path (required)")
	configPath := flags.String("config", "", "config yaml (optional)")
	versionID := flags.String("version", "", "document version id (required)")
	src := flags.String("src", "", "source document path or URL (required)")
	lang := flags.String("lang", "en", "document language")
	force := flags.Bool("force", false, "re-ingest even when the version is already ready")
	flags.Parse(args)

	if *versionID == "" || *src == "" {
		flags.Usage()
		os.Exit(2)
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svc := newService(*configPath, *dbPath)
	defer func() { _ = svc.Close() }()

	resp, err := svc.Ingest(ctx, service.IngestRequest{
		VersionID: *versionID,
		SourceURL: *src,
		Lang:      *lang,
		Force:     *force,
		Logf:      log.Printf,
	})
	if err != nil {
		log.Fatalf("ingest: %v", err)
	}
	fmt.Printf("run=%s status=%s anchors=%d chunks=%d facts=%d schedule=%t\n",
		resp.RunID, resp.Status, resp.Summary.Anchors, resp.Summary.Chunks, resp.Summary.Facts, resp.Summary.ScheduleFound)
	for _, warning := range resp.Warnings {
		fmt.Printf("warning: %s\n", warning)
	}
}

func anchorsCmd(args []string) {
	flags := flag.NewFlagSet("anchors", flag.ExitOnError)
	dbPath := flags.String("db", "", "SQLite database path (required)")
	configPath := flags.String("config", "", "config yaml (optional)")
	versionID := flags.String("version", "", "document version id (required)")
	contentType := flags.String("type", "", "content type filter: h|p|cell|tbl")
	zone := flags.String("zone", "", "zone filter: body|header|footer|appendix")
	section := flags.String("section", "", "section path prefix, segments joined by '/'")
	superseded := flags.Bool("superseded", false, "include superseded anchors")
	flags.Parse(args)

	if *versionID == "" {
		flags.Usage()
		os.Exit(2)
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svc := newService(*configPath, *dbPath)
	defer func() { _ = svc.Close() }()

	query := store.AnchorQuery{
		VersionID:         *versionID,
		Type:              anchor.ContentType(*contentType),
		Zone:              document.Zone(*zone),
		IncludeSuperseded: *superseded,
	}
	if *section != "" {
		query.SectionPrefix = strings.Split(*section, "/")
	}
	anchors, err := svc.Anchors(ctx, query)
	if err != nil {
		log.Fatalf("anchors: %v", err)
	}
	for _, a := range anchors {
		text := a.Text
		if len(text) > 80 {
			text = text[:80] + "..."
		}
		fmt.Printf("%s zone=%s %s\n", a.ID.String(), a.Zone, text)
	}
}

func factsCmd(args []string) {
	flags := flag.NewFlagSet("facts", flag.ExitOnError)
	dbPath := flags.String("db", "", "SQLite database path (required)")
	configPath := flags.String("config", "", "config yaml (optional)")
	versionID := flags.String("version", "", "document version id (required)")
	key := flags.String("key", "", "fact key filter (optional)")
	flags.Parse(args)

	if *versionID == "" {
		flags.Usage()
		os.Exit(2)
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svc := newService(*configPath, *dbPath)
	defer func() { _ = svc.Close() }()

	factList, err := svc.Facts(ctx, *versionID, *key)
	if err != nil {
		log.Fatalf("facts: %v", err)
	}
	for _, f := range factList {
		unit := f.Unit
		if unit == "" {
			unit = "-"
		}
		fmt.Printf("key=%s value=%q unit=%s confidence=%.2f anchor=%s\n",
			f.Key, f.Value, unit, f.Confidence, f.AnchorID.String())
	}
}

func scheduleCmd(args []string) {
	flags := flag.NewFlagSet("schedule", flag.ExitOnError)
	dbPath := flags.String("db", "", "SQLite database path (required)")
	configPath := flags.String("config", "", "config yaml (optional)")
	versionID := flags.String("version", "", "document version id (required)")
	flags.Parse(args)

	if *versionID == "" {
		flags.Usage()
		os.Exit(2)
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svc := newService(*configPath, *dbPath)
	defer func() { _ = svc.Close() }()

	m, err := svc.Matrix(ctx, *versionID)
	if err != nil {
		log.Fatalf("schedule: %v", err)
	}
	if !m.Found {
		fmt.Printf("no schedule found (best score %.2f)\n", m.Confidence)
		return
	}
	fmt.Printf("visits=%s\n", strings.Join(m.Visits, ", "))
	for _, entry := range m.Entries {
		fmt.Printf("%s @ %s: %s anchor=%s\n", entry.Procedure, entry.Visit, entry.Value, entry.AnchorID.String())
	}
}

func runsCmd(args []string) {
	flags := flag.NewFlagSet("runs", flag.ExitOnError)
	dbPath := flags.String("db", "", "SQLite database path (required)")
	configPath := flags.String("config", "", "config yaml (optional)")
	versionID := flags.String("version", "", "document version id (required)")
	flags.Parse(args)

	if *versionID == "" {
		flags.Usage()
		os.Exit(2)
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svc := newService(*configPath, *dbPath)
	defer func() { _ = svc.Close() }()

	runs, err := svc.Runs(ctx, *versionID)
	if err != nil {
		log.Fatalf("runs: %v", err)
	}
	for _, run := range runs {
		fmt.Printf("run=%s status=%s pipeline=%s config=%s started=%s duration=%s warnings=%d errors=%d\n",
			run.ID, run.Status, run.PipelineVersion, run.ConfigHash,
			run.StartedAt.Format("2006-01-02T15:04:05Z07:00"), run.Duration, len(run.Warnings), len(run.Errors))
	}
}

func searchCmd(args []string) {
	flags := flag.NewFlagSet("search", flag.ExitOnError)
	dbPath := flags.String("db", "", "SQLite database path (required)")
	configPath := flags.String("config", "", "config yaml (optional)")
	versionID := flags.String("version", "", "document version id (required)")
	query := flags.String("query", "", "query text (required)")
	limit := flags.Int("limit", 10, "max results")
	minScore := flags.Float64("min-score", 0, "minimum cosine score")
	flags.Parse(args)

	if *versionID == "" || *query == "" {
		flags.Usage()
		os.Exit(2)
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svc := newService(*configPath, *dbPath)
	defer func() { _ = svc.Close() }()

	results, err := svc.Search(ctx, service.SearchRequest{
		VersionID: *versionID,
		Query:     *query,
		Limit:     *limit,
		MinScore:  *minScore,
	})
	if err != nil {
		log.Fatalf("search: %v", err)
	}
	for _, item := range results {
		text := item.Text
		if len(text) > 200 {
			text = text[:200] + "..."
		}
		fmt.Printf("seq=%d score=%.4f section=%s\n%s\n\n", item.Seq, item.Score, strings.Join(item.Section, "/"), text)
	}
}

func startGops() {
	if err := agent.Listen(agent.Options{ShutdownCleanup: true}); err != nil {
		log.Printf("gops: %v", err)
	}
}
