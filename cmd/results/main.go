package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/jwebster45206/cnv-trainer/internal/config"
	"github.com/jwebster45206/cnv-trainer/internal/logger"
	"github.com/jwebster45206/cnv-trainer/internal/storage"
	"github.com/jwebster45206/cnv-trainer/pkg/scoring"
)

const usage = "Usage: %s <list|stats|clear>\n"

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, usage, os.Args[0])
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.Setup(cfg, os.Stderr)

	store, err := storage.Open(cfg.StoreBackend, cfg.StorePath, cfg.RedisURL, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open store: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if rs, ok := store.(*storage.RedisStore); ok {
		if err := rs.WaitForConnection(ctx, 5, time.Second); err != nil {
			fmt.Fprintf(os.Stderr, "Could not connect to Redis: %v\n", err)
			os.Exit(1)
		}
	}

	err = run(ctx, os.Args[1], storage.NewResults(store, log), os.Stdout)
	if rs, ok := store.(*storage.RedisStore); ok {
		_ = rs.Close()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, results *storage.Results, out io.Writer) error {
	switch command {
	case "list":
		list, err := results.List(ctx)
		if err != nil {
			return err
		}
		return writeList(out, storage.SortByCompletedDesc(list))
	case "stats":
		list, err := results.List(ctx)
		if err != nil {
			return err
		}
		st := storage.Summarise(list)
		fmt.Fprintf(out, "Participants: %d\n", st.Count)
		fmt.Fprintf(out, "Average score: %.1f\n", st.AverageScore)
		fmt.Fprintf(out, "Already knew CNV: %d\n", st.KnowsCNV)
		return nil
	case "clear":
		if err := results.ClearAll(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "All results cleared.")
		return nil
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func writeList(out io.Writer, list []storage.StoredResult) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(out, "No results stored yet.")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSCORE\tPERCENT\tLEVEL\tKNOWS CNV\tCOMPLETED")
	for _, r := range list {
		knows := "no"
		if r.KnowsCNV {
			knows = "yes"
		}
		fmt.Fprintf(tw, "%s\t%d/%d\t%.0f%%\t%s\t%s\t%s\n",
			r.Name,
			r.Score, r.Possible(),
			r.Percentage(),
			scoring.Evaluate(r.Score, r.Possible()).Level,
			knows,
			r.CompletedAt.Local().Format("02/01/2006 15:04"))
	}
	return tw.Flush()
}

