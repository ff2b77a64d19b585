package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/gofrs/flock"
	"github.com/lmittmann/tint"

	"buyerfinder/internal/config"
	"buyerfinder/internal/domain"
	"buyerfinder/internal/engine"
	"buyerfinder/internal/export"
	"buyerfinder/internal/secrets"
	"buyerfinder/internal/source"
	"buyerfinder/internal/source/registry"
	"buyerfinder/internal/source/types"
	"buyerfinder/internal/source/util"
	"buyerfinder/internal/source/yellowpages"
	"buyerfinder/internal/store"
)

const banner = `
  Vehicle Buyer Prospect Finder
  finding likely vehicle buyers and sellers in your area
`

const legalNotice = `
LEGAL NOTICE
============
This application may access personal information subject to the Driver's
Privacy Protection Act (DPPA), the Telephone Consumer Protection Act (TCPA)
and the CAN-SPAM Act.

You must have proper authorization for registry data access, comply with
all applicable privacy laws, obtain consent before marketing communications
and maintain Do Not Call registry compliance. Unauthorized use may result
in civil and criminal penalties.
`

func main() {
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		TimeFormat: time.Kitchen,
	})))

	if err := run(); err != nil {
		slog.Error("run failed", tint.Err(err))
		os.Exit(1)
	}
}

func run() error {
	var (
		cfgPath       = flag.String("config", "", "path to config.yml (default: <data dir>/config.yml)")
		locations     = flag.String("locations", "", `semicolon-separated locations, e.g. "Jacksonville, FL;Saint Augustine, FL"`)
		categories    = flag.String("categories", "", "comma-separated directory search categories")
		format        = flag.String("format", "", "output format: csv, xlsx or json")
		mockRegistry  = flag.Bool("mock-registry", false, "use mock registry data (testing only)")
		directoryOnly = flag.Bool("directory-only", false, "skip the registry source entirely")
		partial       = flag.Bool("partial", false, "continue when one source fails, using the surviving sources")
		noNotice      = flag.Bool("no-notice", false, "skip the legal notice prompt (not recommended)")
		yes           = flag.Bool("yes", false, "acknowledge the legal notice without prompting")
		setAPIKey     = flag.String("set-registry-key", "", "store a registry API key in the OS keychain and exit")
	)
	flag.Parse()

	if *setAPIKey != "" {
		if err := secrets.SetRegistryAPIKey(*setAPIKey); err != nil {
			return fmt.Errorf("store registry key: %w", err)
		}
		slog.Info("registry API key stored in keychain")
		return nil
	}

	dataDir := os.Getenv("BUYERFINDER_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	userCfgPath := *cfgPath
	if userCfgPath == "" {
		var err error
		userCfgPath, err = config.EnsureUserConfig(dataDir, filepath.Join("config", "config.yml"))
		if err != nil {
			return fmt.Errorf("config bootstrap: %w", err)
		}
	}

	cfg, err := config.Load(userCfgPath)
	if err != nil {
		return fmt.Errorf("config load (%s): %w", userCfgPath, err)
	}
	applyOverrides(&cfg, *locations, *categories, *format)
	if *directoryOnly {
		cfg.Sources.Registry.Enabled = false
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	fmt.Print(banner)
	if !*noNotice {
		fmt.Print(legalNotice)
		if !*yes && !acknowledge(os.Stdin) {
			return errors.New("legal compliance acknowledgment required")
		}
	}

	// one run at a time per data dir; the sqlite store has a single writer
	lock := flock.New(filepath.Join(dataDir, "buyerfinder.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return errors.New("another run is already in progress for this data dir")
	}
	defer lock.Unlock()

	fetchers, err := buildFetchers(cfg, *mockRegistry)
	if err != nil {
		return err
	}
	if len(fetchers) == 0 {
		return errors.New("no sources enabled")
	}

	slog.Info("starting run",
		"locations", cfg.Search.Locations,
		"categories", cfg.Search.Categories,
		"sources", len(fetchers))

	result := source.FetchAll(context.Background(), fetchers, 5*time.Minute)
	for _, f := range result.Failures {
		slog.Error("source unavailable", "source", f.Name, tint.Err(f.Err))
	}
	if len(result.Failures) == len(fetchers) {
		return errors.New("every source failed, nothing to consolidate")
	}
	if len(result.Failures) > 0 && !*partial {
		return fmt.Errorf("%d source(s) failed; rerun with -partial to use the surviving sources", len(result.Failures))
	}

	eng := engine.New(cfg.EngineRules(), cfg.Scoring)
	startedAt := time.Now()
	prospects, stats, err := eng.Consolidate(result.Records)
	if err != nil {
		return err
	}
	slog.Info("consolidation done",
		"raw_in", stats.RawIn, "rejected", stats.Rejected,
		"merged", stats.Merged, "final", stats.Final)

	db, err := store.Open(filepath.Join(dataDir, "buyerfinder.db"))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	runID, err := db.SaveRun(context.Background(), startedAt, stats, prospects)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	slog.Info("run saved", "run_id", runID)

	baseName := export.DefaultBaseName(startedAt)
	outPath, err := export.Prospects(cfg.App.OutputDir, baseName, export.Format(cfg.App.OutputFormat), prospects)
	if err != nil {
		return err
	}
	reportPath, err := export.Report(cfg.App.OutputDir, baseName, stats, startedAt)
	if err != nil {
		return err
	}
	slog.Info("exported", "prospects", outPath, "report", reportPath)

	printTop(prospects, 10)
	return nil
}

func applyOverrides(cfg *config.Config, locations, categories, format string) {
	if locations != "" {
		cfg.Search.Locations = splitAndTrim(locations, ";")
	}
	if categories != "" {
		cfg.Search.Categories = splitAndTrim(categories, ",")
	}
	if format != "" {
		cfg.App.OutputFormat = format
	}
}

func splitAndTrim(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func acknowledge(in *os.File) bool {
	fmt.Print("Do you acknowledge and agree to comply with all legal requirements? (yes/no): ")
	sc := bufio.NewScanner(in)
	if !sc.Scan() {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(sc.Text()), "yes")
}

func buildFetchers(cfg config.Config, mockRegistry bool) ([]types.Fetcher, error) {
	var fetchers []types.Fetcher

	if cfg.Sources.YellowPages.Enabled {
		reqPerSec := cfg.Sources.YellowPages.RequestsPerSec
		if reqPerSec <= 0 {
			reqPerSec = 0.5
		}
		burst := cfg.Sources.YellowPages.Burst
		if burst <= 0 {
			burst = 1
		}
		fetchers = append(fetchers, yellowpages.New(yellowpages.Config{
			BaseURL:    cfg.Sources.YellowPages.BaseURL,
			Categories: cfg.Search.Categories,
			Locations:  cfg.Search.Locations,
		}, util.NewHostLimiter(reqPerSec, burst)))
	}

	if cfg.Sources.Registry.Enabled {
		if mockRegistry {
			slog.Warn("using mock registry data, records are not real")
			fetchers = append(fetchers, &registry.Mock{Locations: cfg.Search.Locations})
		} else {
			creds, err := config.LoadCredentials()
			if err != nil {
				return nil, err
			}
			if creds.RegistryAPIKey == "" {
				if key, kerr := secrets.GetRegistryAPIKey(); kerr == nil {
					creds.RegistryAPIKey = key
				}
			}
			if !creds.Complete() {
				return nil, errors.New(
					"registry credentials not configured; set REGISTRY_API_KEY, REGISTRY_API_ENDPOINT " +
						"and REGISTRY_USER_ID (or use -mock-registry for testing)")
			}
			client, err := registry.NewClient(registry.Config{
				Endpoint:     creds.RegistryEndpoint,
				APIKey:       creds.RegistryAPIKey,
				UserID:       creds.RegistryUserID,
				Locations:    cfg.Search.Locations,
				LookbackDays: cfg.Search.LookbackDays,
			})
			if err != nil {
				return nil, err
			}
			fetchers = append(fetchers, client)
		}
	}

	return fetchers, nil
}

func printTop(prospects []domain.Prospect, n int) {
	if len(prospects) == 0 {
		fmt.Println("\nNo prospects found.")
		return
	}
	if n > len(prospects) {
		n = len(prospects)
	}

	fmt.Printf("\nTop %d Prospects\n", n)
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPHONE\tTYPE\tSCORE")
	for _, p := range prospects[:n] {
		phone := p.PhoneDisplay
		if phone == "" {
			phone = p.Phone
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", p.Name, phone, p.Type, p.Score)
	}
	w.Flush()
}
