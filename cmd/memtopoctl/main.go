// memtopoctl decodes membrane-topology state sequences from per-position
// class probabilities and evaluates decoded topologies against 3line
// ground truth.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"memtopo/internal/dataset"
	"memtopo/internal/eval"
	"memtopo/internal/grammar"
	"memtopo/internal/region"
	"memtopo/internal/storage"
	"memtopo/internal/threeline"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "decode":
		return runDecode(ctx, args[1:])
	case "evaluate":
		return runEvaluate(ctx, args[1:])
	case "regions":
		return runRegions(ctx, args[1:])
	case "match":
		return runMatch(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "show":
		return runShow(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runDecode(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	emissionsPath := fs.String("emissions", "", "emission probability CSV (one row per residue, one column per class)")
	logSpace := fs.Bool("log", false, "emission values are log-probabilities")
	hasHeader := fs.Bool("header", false, "emission CSV has a header row")
	helixLen := fs.Int("helix-len", grammar.DefaultHelixLen, "per-direction helix chain length")
	legacy := fs.Bool("legacy-regions", false, "use the reference extractor's boundary behavior")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *emissionsPath == "" {
		return usageError("decode requires -emissions")
	}

	probs, err := readEmissionsFile(*emissionsPath, *hasHeader, *logSpace)
	if err != nil {
		return err
	}

	g, err := grammar.New(*helixLen)
	if err != nil {
		return err
	}
	evaluator := eval.New(g, eval.Options{LegacyRegions: *legacy})
	result, err := evaluator.EvaluateSequence(eval.Sequence{Name: *emissionsPath, Probs: probs})
	if err != nil {
		return err
	}

	fmt.Printf("positions=%s score=%.6f\n", humanize.Comma(int64(len(probs))), result.Score)
	fmt.Printf("labels=%s\n", result.Labels)
	for _, r := range result.Predicted {
		fmt.Printf("region start=%d end=%d len=%d\n", r.Start, r.End, r.Len())
	}
	return nil
}

func runEvaluate(ctx context.Context, args []string) error {
	defaults := defaultEvaluateRequest()

	fs := flag.NewFlagSet("evaluate", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional evaluate config JSON path; explicit flags override its values")
	truthPath := fs.String("truth", "", "3line ground-truth file")
	emissionsDir := fs.String("emissions-dir", "", "directory of <record>.csv emission files")
	logSpace := fs.Bool("log", false, "emission values are log-probabilities")
	hasHeader := fs.Bool("header", false, "emission CSVs have a header row")
	helixLen := fs.Int("helix-len", defaults.HelixLen, "per-direction helix chain length")
	workers := fs.Int("workers", defaults.Workers, "parallel decode workers")
	legacy := fs.Bool("legacy-regions", false, "use the reference extractor's boundary behavior")
	minLen := fs.Int("min-len", defaults.MinLen, "drop records shorter than this (-1 disables)")
	maxLen := fs.Int("max-len", defaults.MaxLen, "drop records longer than this (-1 disables)")
	truncate := fs.Int("truncate", defaults.Truncate, "truncate records to this length (-1 disables)")
	storeKind := fs.String("store", defaults.StoreKind, "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaults.DBPath, "sqlite database path")
	save := fs.Bool("save", false, "persist the run report to the store")
	jsonOut := fs.Bool("json", false, "emit the report as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	setFlags := map[string]bool{}
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	req, err := loadOrDefaultEvaluateRequest(*configPath)
	if err != nil {
		return err
	}
	if *configPath == "" {
		req = evaluateRequest{
			Truth:         *truthPath,
			EmissionsDir:  *emissionsDir,
			LogSpace:      *logSpace,
			HasHeader:     *hasHeader,
			HelixLen:      *helixLen,
			Workers:       *workers,
			LegacyRegions: *legacy,
			MinLen:        *minLen,
			MaxLen:        *maxLen,
			Truncate:      *truncate,
			StoreKind:     *storeKind,
			DBPath:        *dbPath,
			Save:          *save,
		}
	} else {
		overrideEvaluateFromFlags(&req, setFlags, map[string]any{
			"truth":          *truthPath,
			"emissions-dir":  *emissionsDir,
			"log":            *logSpace,
			"header":         *hasHeader,
			"helix-len":      *helixLen,
			"workers":        *workers,
			"legacy-regions": *legacy,
			"min-len":        *minLen,
			"max-len":        *maxLen,
			"truncate":       *truncate,
			"store":          *storeKind,
			"db-path":        *dbPath,
			"save":           *save,
		})
	}
	if req.Truth == "" || req.EmissionsDir == "" {
		return usageError("evaluate requires -truth and -emissions-dir")
	}

	f, err := os.Open(req.Truth)
	if err != nil {
		return err
	}
	records, err := threeline.ParseFiltered(f, threeline.Filter{MinLen: req.MinLen, MaxLen: req.MaxLen, Truncate: req.Truncate})
	closeErr := f.Close()
	if err != nil {
		return err
	}
	if closeErr != nil {
		return closeErr
	}

	seqs := make([]eval.Sequence, 0, len(records))
	for _, rec := range records {
		probs, err := readEmissionsFile(filepath.Join(req.EmissionsDir, rec.Name+".csv"), req.HasHeader, req.LogSpace)
		if err != nil {
			return fmt.Errorf("record %q: %w", rec.Name, err)
		}
		seqs = append(seqs, eval.Sequence{Name: rec.Name, Probs: probs, Truth: rec.Labels})
	}

	g, err := grammar.New(req.HelixLen)
	if err != nil {
		return err
	}
	evaluator := eval.New(g, eval.Options{LegacyRegions: req.LegacyRegions})
	report, err := evaluator.Run(ctx, seqs, eval.Config{Workers: req.Workers})
	if err != nil {
		return err
	}

	if req.Save {
		store, err := storage.NewStore(req.StoreKind, req.DBPath)
		if err != nil {
			return err
		}
		defer func() {
			_ = storage.CloseIfSupported(store)
		}()
		if err := store.Init(ctx); err != nil {
			return err
		}
		if err := store.SaveRun(ctx, report); err != nil {
			return err
		}
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Printf("run_id=%s helix_len=%d sequences=%s evaluated=%s correct=%s failed=%s accuracy=%.6f elapsed=%s\n",
		report.RunID,
		report.HelixLen,
		humanize.Comma(int64(report.Total)),
		humanize.Comma(int64(report.Evaluated)),
		humanize.Comma(int64(report.Correct)),
		humanize.Comma(int64(report.Failed)),
		report.Accuracy,
		report.Elapsed,
	)
	for _, msg := range report.Errors {
		fmt.Fprintf(os.Stderr, "skipped: %s\n", msg)
	}
	return nil
}

func runRegions(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("regions", flag.ContinueOnError)
	labelLine := fs.String("labels", "", "topology label string over I/O/M/S")
	legacy := fs.Bool("legacy", false, "use the reference extractor's boundary behavior")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *labelLine == "" {
		return usageError("regions requires -labels")
	}

	labels, err := grammar.ParseLabels(*labelLine)
	if err != nil {
		return err
	}
	extract := region.Extract
	if *legacy {
		extract = region.ExtractLegacy
	}
	regions := extract(labels)
	if len(regions) == 0 {
		fmt.Println("no membrane regions")
		return nil
	}
	for _, r := range regions {
		fmt.Printf("region start=%d end=%d len=%d\n", r.Start, r.End, r.Len())
	}
	return nil
}

func runMatch(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("match", flag.ContinueOnError)
	predSpec := fs.String("pred", "", "predicted regions, e.g. 2:10,15:40")
	truthSpec := fs.String("truth", "", "true regions, e.g. 3:8,16:38")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *predSpec == "" || *truthSpec == "" {
		return usageError("match requires -pred and -truth")
	}

	pred, err := parseRegionList(*predSpec)
	if err != nil {
		return fmt.Errorf("parse -pred: %w", err)
	}
	truth, err := parseRegionList(*truthSpec)
	if err != nil {
		return fmt.Errorf("parse -truth: %w", err)
	}

	fmt.Printf("match=%t\n", region.Match(pred, truth))
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "memtopo.db", "sqlite database path")
	limit := fs.Int("limit", 20, "max runs to list")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return usageError("limit must be > 0")
	}

	store, err := storage.NewStore(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()
	if err := store.Init(ctx); err != nil {
		return err
	}

	summaries, err := store.ListRuns(ctx)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Println("no runs found")
		return nil
	}
	if len(summaries) > *limit {
		summaries = summaries[len(summaries)-*limit:]
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}

	for _, s := range summaries {
		fmt.Printf("run_id=%s created_at=%s helix_len=%d evaluated=%s correct=%s accuracy=%.6f\n",
			s.ID,
			s.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			s.HelixLen,
			humanize.Comma(int64(s.Evaluated)),
			humanize.Comma(int64(s.Correct)),
			s.Accuracy,
		)
	}
	return nil
}

func runShow(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	id := fs.String("id", "", "run id")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "memtopo.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return usageError("show requires -id")
	}

	store, err := storage.NewStore(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()
	if err := store.Init(ctx); err != nil {
		return err
	}

	report, ok, err := store.GetRun(ctx, *id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("run %s not found", *id)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func readEmissionsFile(path string, hasHeader, logSpace bool) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return dataset.ReadEmissions(f, dataset.EmissionOptions{HasHeader: hasHeader, LogSpace: logSpace})
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: memtopoctl <decode|evaluate|regions|match|runs|show> [flags]", msg)
}
