package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cpan-security/cpansentry/internal/config"
	"github.com/cpan-security/cpansentry/internal/diff"
	"github.com/cpan-security/cpansentry/internal/fetch"
	"github.com/cpan-security/cpansentry/internal/perms"
	"github.com/cpan-security/cpansentry/internal/report"
	"github.com/cpan-security/cpansentry/internal/scan"
	"github.com/cpan-security/cpansentry/internal/snapshot"
)

var (
	configPath string
	mirror     string
	dataDir    string
	distance   int
	verbose    bool
	jsonLines  bool
	withAudit  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "cpansentry",
		Short:        "Watches the CPAN package index for confusable and misplaced names",
		Long:         "cpansentry keeps rolling snapshots of a CPAN mirror's package index, diffs them for newly appeared packages, and flags names confusable with existing packages from other distributions or placed outside their distribution's namespace. It also audits the PAUSE permissions list for flagged maintainers with too much permission.",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetOutput(os.Stderr)
			if verbose {
				log.SetLevel(log.DebugLevel)
			}
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Config file path (YAML)")
	pf.StringVarP(&mirror, "mirror", "m", "", "CPAN mirror URL")
	pf.StringVarP(&dataDir, "data-dir", "d", "", "Directory for snapshot generations")
	pf.IntVar(&distance, "distance", 0, "Confusability edit-distance threshold")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Verbose diagnostics")
	pf.BoolVar(&jsonLines, "json", false, "Emit warnings as JSON lines")

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Fetch the index, diff against the previous run, report warnings",
		RunE:  runWatch,
	}
	watchCmd.Flags().BoolVar(&withAudit, "audit", false, "Also run the permissions audit")

	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "Audit the permissions list for flagged maintainers",
		RunE:  runAudit,
	}

	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(auditCmd)

	if err := rootCmd.Execute(); err != nil {
		// First run is a distinguished condition, not a failure.
		if errors.Is(err, snapshot.ErrNoBaseline) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// loadConfig layers flag values over the config file over the defaults.
// Without --config, a config.yaml in the data directory is picked up when
// present.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	var err error
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		dir := config.Default().DataDir
		if cmd.Flags().Changed("data-dir") {
			dir = dataDir
		}
		cfg, err = config.LoadDir(dir)
	}
	if err != nil {
		return config.Config{}, err
	}
	if cmd.Flags().Changed("mirror") {
		cfg.Mirror = mirror
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = dataDir
	}
	if cmd.Flags().Changed("distance") {
		if distance < 1 {
			return config.Config{}, fmt.Errorf("distance must be at least 1")
		}
		cfg.Distance = distance
	}
	return cfg, nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	store, err := snapshot.NewStore(cfg.DataDir)
	if err != nil {
		return err
	}
	client := fetch.New(cfg.Mirror, cfg.IndexPath, cfg.PermsPath)
	ctx := cmd.Context()

	// The audit shares no state with the index pipeline, so a failure on
	// one side must not mask the other.
	var errs *multierror.Error
	if err := watchIndex(ctx, cfg, store, client); err != nil {
		errs = multierror.Append(errs, err)
	}
	if withAudit {
		if err := auditPerms(ctx, store, client); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

func runAudit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	store, err := snapshot.NewStore(cfg.DataDir)
	if err != nil {
		return err
	}
	return auditPerms(cmd.Context(), store, fetch.New(cfg.Mirror, cfg.IndexPath, cfg.PermsPath))
}

func watchIndex(ctx context.Context, cfg config.Config, store *snapshot.Store, client *fetch.Client) error {
	// Fetch before rotating: a failed fetch must leave the stored
	// generations untouched.
	tmp, err := client.Index(ctx, store.Dir())
	if err != nil {
		return err
	}

	if !store.HasBaseline() {
		if err := store.InstallCurrent(tmp); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "first run: baseline stored, re-run after the next index update")
		return snapshot.ErrNoBaseline
	}

	if err := store.Rotate(); err != nil {
		return err
	}
	if err := store.InstallCurrent(tmp); err != nil {
		return err
	}

	current, err := store.Current()
	if err != nil {
		return err
	}
	previous, err := store.Previous()
	if err != nil {
		return err
	}

	newness := diff.Diff(current, previous)
	if newness.Empty() {
		fmt.Println("no new packages")
		return nil
	}
	log.Infof("%d new packages, %d new distributions", len(newness.Packages), len(newness.Dists))
	for _, pkg := range newness.Packages {
		log.Debugf("new package: %s (%s)", pkg, current.Packages[pkg])
	}

	scanner := scan.NewScanner(cfg.Distance)
	warnings := scanner.Confusables(current, newness.Packages)
	warnings = append(warnings, scan.Namespaces(current, newness.Packages)...)

	return report.NewReporter(os.Stdout, jsonLines).Emit(warnings)
}

func auditPerms(ctx context.Context, store *snapshot.Store, client *fetch.Client) error {
	tmp, err := client.Perms(ctx, store.Dir())
	if err != nil {
		return err
	}
	if err := store.InstallPerms(tmp); err != nil {
		return err
	}

	f, err := os.Open(store.PermsPath())
	if err != nil {
		return fmt.Errorf("opening permissions file: %w", err)
	}
	defer f.Close()

	result, err := perms.Audit(f)
	if err != nil {
		return err
	}

	if len(result.Warnings) == 0 {
		fmt.Printf("permissions: %d entries scanned, all clean\n", result.Scanned)
		return nil
	}
	log.Infof("permissions: %d entries scanned, %d clean", result.Scanned, result.Clean())
	return report.NewReporter(os.Stdout, jsonLines).Emit(result.Warnings)
}
