package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/meshnum/internal/finalize"
	"github.com/meshnum/internal/graphexport"
	"github.com/meshnum/internal/history"
	"github.com/meshnum/internal/scheduler"
	"github.com/meshnum/internal/store"
	"github.com/meshnum/internal/validate"
	"github.com/meshnum/pkg/config"
)

var (
	runScenario  string
	runFullStyle bool
	runWithFaces bool
	runID        string
	runPersist   bool
	runRecord    bool
	runGraphPath string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the numbering algorithm over a named forest scenario",
	Long: `run builds a named forest scenario (one of spec §8's concrete cases),
drives the six-phase algorithm across every rank it defines, prints each
rank's owned/shared summary, and optionally persists the result to the
configured store and run-history database.`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runScenario, "scenario", "single", fmt.Sprintf("Forest scenario to run (one of: %v)", scenarioNames()))
	runCmd.Flags().BoolVar(&runFullStyle, "full-style", false, "Use full-style triangulation (spec.md §6)")
	runCmd.Flags().BoolVar(&runWithFaces, "with-faces", false, "Include triangle-face midpoints as nodes")
	runCmd.Flags().StringVar(&runID, "run-id", "", "Run identifier used for persistence (default: generated)")
	runCmd.Flags().BoolVar(&runPersist, "store", false, "Persist each rank's checkpoint to the configured store")
	runCmd.Flags().BoolVar(&runRecord, "history", false, "Record each rank's summary to the configured run-history database")
	runCmd.Flags().StringVar(&runGraphPath, "graph", "", "Write a sharer-relationship graph (JSON) to this path")
}

func runRun(cmd *cobra.Command, args []string) error {
	log := GetLogger()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	id := runID
	if id == "" {
		id = fmt.Sprintf("run-%s-%d", runScenario, os.Getpid())
	}

	forests, err := buildScenario(runScenario)
	if err != nil {
		return err
	}

	inputs := make([]scheduler.RankInput, len(forests))
	for i, f := range forests {
		inputs[i] = scheduler.RankInput{
			Rank:      f.Rank(),
			Forest:    f,
			FullStyle: runFullStyle,
			WithFaces: runWithFaces,
		}
	}

	log.Info("running scenario %q across %d rank(s), full_style=%v, with_faces=%v", runScenario, len(inputs), runFullStyle, runWithFaces)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	results, err := scheduler.Run(ctx, inputs, scheduler.Options{Validate: true})
	if err != nil {
		return fmt.Errorf("numbering run failed: %w", err)
	}

	for _, r := range results {
		log.Info("rank %d: owned=%d shared-in=%d findings=%d", r.Rank, r.Finalize.NumOwned, len(r.Finalize.NonLocalToGlobal), len(r.Findings))
		for _, f := range r.Findings {
			log.Warn("rank %d: [%s] %s: %s", r.Rank, f.Level, f.Rule, f.Message)
		}
	}

	if runPersist {
		s, err := store.New(&cfg.Store)
		if err != nil {
			return fmt.Errorf("creating store: %w", err)
		}
		if err := persistCheckpoints(ctx, s, id, results); err != nil {
			return err
		}
	}

	if runRecord {
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
		if err := recordHistory(ctx, repo, id, results); err != nil {
			return err
		}
	}

	if runGraphPath != "" {
		if err := writeGraph(id, results); err != nil {
			return err
		}
		log.Info("sharer graph written to %s", runGraphPath)
	}

	log.Info("run %q complete", id)
	return nil
}

// persistCheckpoints saves each rank's checkpoint to s. Split from its
// caller so the upload logic can be exercised against a mock.MockStore without
// a real backing bucket or filesystem.
func persistCheckpoints(ctx context.Context, s store.Store, runID string, results []scheduler.RankResult) error {
	for _, r := range results {
		cp := store.NewCheckpoint(r.Rank, r.Finalize)
		key := store.CheckpointKey(runID, r.Rank)
		if err := store.Save(ctx, s, key, cp); err != nil {
			return fmt.Errorf("saving checkpoint for rank %d: %w", r.Rank, err)
		}
	}
	return nil
}

// recordHistory saves each rank's run summary and sharer edges to repo.
// Split from its caller so it can be exercised against a mock.MockRunRepository
// without a real database connection.
func recordHistory(ctx context.Context, repo history.RunRepository, runID string, results []scheduler.RankResult) error {
	for _, r := range results {
		key := store.CheckpointKey(runID, r.Rank)
		fatal := 0
		for _, f := range r.Findings {
			if f.Level == validate.LevelFatal {
				fatal++
			}
		}
		if err := repo.SaveRun(ctx, runID, r.Rank, len(results), r.Finalize, key, fatal); err != nil {
			return fmt.Errorf("saving run record for rank %d: %w", r.Rank, err)
		}

		edges := make(map[int]int32)
		for peer, s := range r.Finalize.Sharers {
			if peer == finalize.LocalRankKey || s.SharedMineCount == 0 {
				continue
			}
			edges[peer] = s.SharedMineCount
		}
		if len(edges) > 0 {
			if err := repo.SaveSharerEdges(ctx, runID, r.Rank, edges); err != nil {
				return fmt.Errorf("saving sharer edges for rank %d: %w", r.Rank, err)
			}
		}
	}
	return nil
}

func writeGraph(runID string, results []scheduler.RankResult) error {
	byRank := make(map[int]finalize.Result, len(results))
	for _, r := range results {
		byRank[r.Rank] = r.Finalize
	}

	gen := graphexport.NewGenerator(graphexport.DefaultGeneratorOptions())
	graph := gen.Generate(runID, byRank)

	return graphexport.NewPrettyJSONWriter().WriteToFile(graph, runGraphPath)
}
