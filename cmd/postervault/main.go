package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JustinTDCT/PosterVault/internal/api"
	"github.com/JustinTDCT/PosterVault/internal/clients"
	"github.com/JustinTDCT/PosterVault/internal/config"
	"github.com/JustinTDCT/PosterVault/internal/db"
	"github.com/JustinTDCT/PosterVault/internal/matcher"
	"github.com/JustinTDCT/PosterVault/internal/models"
	"github.com/JustinTDCT/PosterVault/internal/reconcile"
	"github.com/JustinTDCT/PosterVault/internal/repository"
	"github.com/JustinTDCT/PosterVault/internal/scanner"
	"github.com/JustinTDCT/PosterVault/internal/scheduler"
	"github.com/JustinTDCT/PosterVault/internal/search"
	"github.com/JustinTDCT/PosterVault/internal/version"
	"github.com/JustinTDCT/PosterVault/internal/watcher"
	"github.com/JustinTDCT/PosterVault/internal/webhook"
	"github.com/JustinTDCT/PosterVault/internal/workflows"
)

var (
	cfgFile string
	force   bool
)

var rootCmd = &cobra.Command{
	Use:   "postervault",
	Short: "Poster asset indexing and matching for Radarr, Sonarr and Plex libraries",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the daemon: webhook server, scheduler and source watcher",
	RunE:  runServe,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one scan, sync and match pass",
	RunE:  runOnce,
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Refresh every library cache scope, ignoring staleness windows",
	RunE:  runSync,
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan and merge the source directories, printing the result as JSON",
	RunE:  runScan,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("postervault %s\n", version.Version())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (TOML)")
	runCmd.Flags().BoolVar(&force, "force", false, "sync every scope even when its cache is fresh")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app bundles everything the serve and run commands share.
type app struct {
	cfg      *config.Config
	database *db.DB
	runner   *workflows.Runner
	server   *api.Server
	webhooks *webhook.Handler
	jobs     *repository.JobRepository
	wake     chan struct{}
}

func newApp() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(database); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	cfg.MergeFromDB(database.DB)

	media := repository.NewMediaCacheRepository(database.DB)
	collections := repository.NewCollectionCacheRepository(database.DB)
	posters := repository.NewPosterRepository(database.DB)
	orphans := repository.NewOrphanRepository(database.DB)
	plexItems := repository.NewPlexRepository(database.DB)
	runState := repository.NewRunStateRepository(database.DB)
	jobs := repository.NewJobRepository(database.DB)
	settingsRepo := repository.NewSettingsRepository(database.DB)

	// Jobs left running by a crash go back on the queue.
	if n, err := jobs.ResetRunning(); err != nil {
		return nil, fmt.Errorf("reset jobs: %w", err)
	} else if n > 0 {
		log.Printf("requeued %d interrupted jobs", n)
	}

	a := &app{cfg: cfg, database: database, jobs: jobs, wake: make(chan struct{}, 1)}

	runner := &workflows.Runner{
		Config:      cfg,
		Media:       media,
		Collections: collections,
		Posters:     posters,
		PlexItems:   plexItems,
		RunState:    runState,
		Jobs:        jobs,
		Syncer: &reconcile.Syncer{
			Media:           media,
			Collections:     collections,
			Orphans:         orphans,
			StalenessWindow: cfg.StalenessWindow(),
		},
	}
	for _, inst := range cfg.Radarr {
		runner.Radarr = append(runner.Radarr, clients.NewRadarrClient(inst.Name, inst.URL, inst.APIKey))
	}
	for _, inst := range cfg.Sonarr {
		runner.Sonarr = append(runner.Sonarr, clients.NewSonarrClient(inst.Name, inst.URL, inst.APIKey))
	}
	for _, inst := range cfg.Plex {
		runner.Plex = append(runner.Plex, clients.NewPlexClient(inst.Name, inst.URL, inst.Token))
	}
	a.runner = runner

	a.webhooks = webhook.NewHandler(cfg.WebhookToken, jobs, a.wakeUp)
	a.server = api.NewServer(cfg, media, collections, posters, orphans, plexItems, jobs, runState, settingsRepo, a.webhooks)
	return a, nil
}

// wakeUp nudges the serve loop without blocking the caller.
func (a *app) wakeUp() {
	select {
	case a.wake <- struct{}{}:
	default:
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.database.Close()

	log.Printf("PosterVault %s starting...", version.Version())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Println("shutting down...")
		cancel()
	}()

	sched := scheduler.New(a.wakeUp)
	if err := sched.Start(a.cfg.Schedule); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	defer sched.Stop()

	if a.cfg.WatchSources {
		dirs := make([]string, 0, len(a.cfg.Sources))
		for _, s := range a.cfg.Sources {
			dirs = append(dirs, s.Path)
		}
		w, err := watcher.New(dirs, a.wakeUp)
		if err != nil {
			return fmt.Errorf("watcher: %w", err)
		}
		w.Start()
		defer w.Stop()
	}

	go a.runLoop(ctx)

	return a.server.Start(ctx)
}

// runLoop serializes passes: every wake-up drains queued jobs and runs once.
func (a *app) runLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-a.wake:
		}

		if err := a.runner.DrainJobs(ctx); err != nil {
			log.Printf("run loop: %v", err)
			continue
		}
		// Wake-ups without queued jobs (scheduler, watcher) still run a pass.
		if _, err := a.runner.Run(ctx, false); err != nil {
			log.Printf("run loop: %v", err)
		}
	}
}

func runOnce(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.database.Close()

	result, err := a.runner.Run(context.Background(), force)
	if err != nil {
		return err
	}
	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))
	return nil
}

func runSync(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.database.Close()

	result, err := a.runner.Run(context.Background(), true)
	if err != nil {
		return err
	}
	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))
	return nil
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	sources := make([]config.SourceDir, len(cfg.Sources))
	copy(sources, cfg.Sources)
	sort.SliceStable(sources, func(i, j int) bool { return sources[i].Priority < sources[j].Priority })

	var scans [][]*models.Asset
	for _, src := range sources {
		assets, err := scanner.Scan(src.Path)
		if err != nil {
			return fmt.Errorf("scan %s: %w", src.Path, err)
		}
		scans = append(scans, assets)
	}

	merged := matcher.MergeAssets(scans, search.New())
	scanner.SortAssets(merged)

	out, _ := json.MarshalIndent(merged, "", "  ")
	fmt.Println(string(out))
	return nil
}
