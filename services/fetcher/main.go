package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/schtekar/rigwatch/internal/analysis"
	"github.com/schtekar/rigwatch/services/fetcher/internal/barentswatch"
	"github.com/schtekar/rigwatch/services/fetcher/internal/config"
	"github.com/schtekar/rigwatch/services/fetcher/internal/db"
	"github.com/schtekar/rigwatch/services/fetcher/internal/kdh"
	"github.com/schtekar/rigwatch/services/fetcher/internal/snapshot"
	"github.com/schtekar/rigwatch/services/fetcher/internal/sodir"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "fetcher",
	Short: "Rigwatch data pipelines",
	Long:  "Fetches SODIR wellbores and BarentsWatch AIS positions, maintains rig snapshots, and runs the rig-well analysis.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c
		return nil
	},
}

var wellsCmd = &cobra.Command{
	Use:   "wells",
	Short: "Fetch and store the SODIR wells document",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWells(cmd.Context())
	},
}

var aisCmd = &cobra.Command{
	Use:   "ais",
	Short: "Fetch BarentsWatch AIS positions and roll rig snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAIS(cmd.Context())
	},
}

var kdhCmd = &cobra.Command{
	Use:   "kdh",
	Short: "Fetch Kystdatahuset historical positions and gap-fill rig snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runKDH(cmd.Context())
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the rig-well analysis over stored wells and snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyze(cmd.Context())
	},
}

func main() {
	rootCmd.AddCommand(wellsCmd, aisCmd, kdhCmd, analyzeCmd)
	if err := rootCmd.Execute(); err != nil {
		log.Printf("fetcher failed: %v", err)
		os.Exit(1)
	}
}

func runWells(ctx context.Context) error {
	client := sodir.NewClient(&http.Client{Timeout: cfg.RequestTimeout}, cfg.SodirQueryURL, cfg.SodirRPS)

	log.Printf("fetching OBJECTIDs from SODIR")
	ids, err := client.FetchObjectIDs(ctx)
	if err != nil {
		return err
	}
	log.Printf("found %d wellbores", len(ids))

	features, err := client.FetchFeatures(ctx, ids, cfg.SodirPageSize)
	if err != nil {
		return err
	}
	log.Printf("fetched %d features", len(features))

	wells := sodir.FilterWells(features, time.Now().UTC())
	log.Printf("relevant wells after filtering: %d", len(wells))

	if cfg.DryRun {
		log.Printf("dry-run: skipping well upsert (%d candidates)", len(wells))
		return nil
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.UpsertWells(ctx, pool, wells); err != nil {
		return err
	}
	log.Printf("upserted %d wells", len(wells))
	return nil
}

func runAIS(ctx context.Context) error {
	client := barentswatch.NewClient(&http.Client{Timeout: cfg.RequestTimeout}, cfg.BWTokenURL, cfg.BWAISURL)

	token, err := client.Token(ctx, cfg.BWClientID, cfg.BWClientSecret)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	messages, err := client.LatestPositions(ctx, token, now.Add(-cfg.AISWindow))
	if err != nil {
		return err
	}
	log.Printf("received %d AIS messages", len(messages))

	positions := barentswatch.FilterLatestByRig(messages)
	log.Printf("found %d rigs with valid positions", len(positions))

	if cfg.DryRun {
		for _, p := range positions {
			log.Printf("dry-run: would store mmsi=%d rig=%s lat=%.5f lon=%.5f", p.MMSI, p.RigName, p.Latitude, p.Longitude)
		}
		return nil
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.InsertAISMessages(ctx, pool, positions); err != nil {
		return err
	}

	snapshots, err := db.LoadSnapshots(ctx, pool)
	if err != nil {
		return err
	}
	updated := snapshot.Update(snapshots, positions, now)
	if err := db.SaveSnapshots(ctx, pool, updated); err != nil {
		return err
	}

	log.Printf("stored %d positions, %d snapshots", len(positions), len(updated))
	return nil
}

func runKDH(ctx context.Context) error {
	client := kdh.NewClient(&http.Client{Timeout: cfg.RequestTimeout}, cfg.KDHAuthURL, cfg.KDHAISURL)

	token, err := client.Token(ctx, cfg.KDHUsername, cfg.KDHPassword)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	positions, err := client.FetchPositions(ctx, token, now)
	if err != nil {
		return err
	}
	log.Printf("received %d historical positions", len(positions))

	if cfg.DryRun {
		for _, p := range positions {
			log.Printf("dry-run: would store mmsi=%d rig=%s lat=%.5f lon=%.5f msgtime=%s", p.MMSI, p.RigName, p.Latitude, p.Longitude, p.MsgTime.Format(time.RFC3339))
		}
		return nil
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.InsertAISMessages(ctx, pool, positions); err != nil {
		return err
	}

	snapshots, err := db.LoadSnapshots(ctx, pool)
	if err != nil {
		return err
	}
	filled := snapshot.GapFill(snapshots, positions)
	if err := db.SaveSnapshots(ctx, pool, filled); err != nil {
		return err
	}

	log.Printf("stored %d positions, gap-filled %d snapshots", len(positions), len(filled))
	return nil
}

func runAnalyze(ctx context.Context) error {
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	wells, err := db.LoadWells(ctx, pool)
	if err != nil {
		return err
	}
	snapshots, err := db.LoadSnapshots(ctx, pool)
	if err != nil {
		return err
	}

	doc := analysis.Run(wells, snapshots, time.Now().UTC())
	log.Printf("analyzed %d rigs against %d wells", len(doc.Rigs), len(wells))

	if cfg.DryRun {
		log.Printf("dry-run: skipping analysis save")
		return nil
	}

	if err := db.SaveAnalysis(ctx, pool, doc); err != nil {
		return err
	}
	log.Printf("analysis stored (generated_at=%s)", doc.GeneratedAt)
	return nil
}
