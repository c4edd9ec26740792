package cmd

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/meshnum/internal/history"
	"github.com/meshnum/pkg/config"
)

var validateRunID string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a persisted run's invariants",
	Long: `validate loads every rank's record for a run from the configured
run-history database and checks the cross-rank invariants of spec.md §8
that a single rank cannot check alone: that owned ranges tile
[0, sum_ranks owned_count) with no gaps or overlap, and that no rank
recorded a fatal finding.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVar(&validateRunID, "run-id", "", "Run identifier to validate (required)")
	validateCmd.MarkFlagRequired("run-id")
}

func runValidate(cmd *cobra.Command, args []string) error {
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

	records, err := repo.ListRuns(ctx, validateRunID)
	if err != nil {
		return fmt.Errorf("loading run %q: %w", validateRunID, err)
	}
	if len(records) == 0 {
		return fmt.Errorf("no records found for run %q", validateRunID)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Rank < records[j].Rank })

	var problems int
	var cumulative int64
	for _, rec := range records {
		if rec.GlobalOffset != cumulative {
			log.Error("rank %d: global_offset=%d, expected %d (owned ranges do not tile)", rec.Rank, rec.GlobalOffset, cumulative)
			problems++
		}
		if rec.FatalFindings > 0 {
			log.Error("rank %d: %d fatal finding(s) recorded", rec.Rank, rec.FatalFindings)
			problems++
		}
		cumulative += int64(rec.NumOwned)
	}

	if problems > 0 {
		return fmt.Errorf("run %q failed validation: %d problem(s)", validateRunID, problems)
	}

	log.Info("run %q valid: %d rank(s), %d owned nodes total", validateRunID, len(records), cumulative)
	return nil
}
