package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/meshnum/internal/finalize"
	"github.com/meshnum/internal/history"
	"github.com/meshnum/internal/scheduler"
	"github.com/meshnum/internal/webui"
	"github.com/meshnum/pkg/config"
)

var (
	serveRunID string
	servePort  int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a persisted run's ownership/sharer summary",
	Long: `serve starts a small HTTP server showing the owned/shared counts per
rank and per sharer for a run previously recorded with "run --history".`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveRunID, "run-id", "", "Run identifier to serve (required)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "Port for the web server")
	serveCmd.MarkFlagRequired("run-id")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := GetLogger()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	db, err := history.NewGormDB(&history.DBConfig{
		Type:     cfg.History.Type,
		Host:     cfg.History.Host,
		Port:     cfg.History.Port,
		Database: cfg.History.Database,
		User:     cfg.History.User,
		Password: cfg.History.Password,
		MaxConns: cfg.History.MaxConns,
	})
	if err != nil {
		return fmt.Errorf("connecting to history database: %w", err)
	}
	repo := history.NewGormRunRepository(db)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	records, err := repo.ListRuns(ctx, serveRunID)
	if err != nil {
		return fmt.Errorf("loading run %q: %w", serveRunID, err)
	}
	if len(records) == 0 {
		return fmt.Errorf("no records found for run %q", serveRunID)
	}

	edges, err := repo.ListSharerEdges(ctx, serveRunID)
	if err != nil {
		return fmt.Errorf("loading sharer edges for run %q: %w", serveRunID, err)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Rank < records[j].Rank })
	results := recordsToResults(records, edges)

	server := webui.NewServer(servePort, log)
	server.SetResults(results)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		server.Shutdown(shutdownCtx)
		os.Exit(0)
	}()

	log.Info("")
	log.Info("meshnum run summary: http://localhost:%d", servePort)
	log.Info("run: %s (%d ranks)", serveRunID, len(records))
	log.Info("press Ctrl+C to stop")
	log.Info("")

	if err := server.Start(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// recordsToResults reconstructs the minimal scheduler.RankResult shape
// webui.BuildSummary needs from persisted history records and sharer edges.
func recordsToResults(records []*history.RunRecord, edges []*history.SharerEdgeRecord) []scheduler.RankResult {
	results := make([]scheduler.RankResult, len(records))
	for i, rec := range records {
		results[i] = scheduler.RankResult{
			Rank: rec.Rank,
			Finalize: finalize.Result{
				NumOwned: rec.NumOwned,
				Sharers:  map[int]*finalize.SharerRecord{},
			},
		}
	}

	byRank := make(map[int]*scheduler.RankResult, len(results))
	for i := range results {
		byRank[results[i].Rank] = &results[i]
	}

	for _, e := range edges {
		owner, ok := byRank[e.OwnerRank]
		if !ok {
			continue
		}
		owner.Finalize.Sharers[e.PeerRank] = &finalize.SharerRecord{Rank: e.PeerRank, SharedMineCount: e.SharedMine}
	}

	return results
}
