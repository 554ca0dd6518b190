package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/popfeed/internal/adapter/output"
	"github.com/jmylchreest/popfeed/internal/producer"
	"github.com/jmylchreest/popfeed/internal/store"
)

var dumpOpts struct {
	count    int
	seed     string
	latency  time.Duration
	interval time.Duration

	// Output options
	format   string
	field    string
	template string
	index    bool
}

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Produce items headlessly and print them",
	Long: `Run the producer without a UI until it has appended --count items,
then print the feed.

Examples:
  # Ten items in dmenu format
  popfeed dump -n 10

  # As YAML, without the simulated latency
  popfeed dump -n 3 --format yaml --latency 1ms

  # Titles only
  popfeed dump -n 5 --field title

  # Continue an earlier dump
  popfeed dump -n 3 --format json > feed.json
  popfeed dump -n 2 --seed feed.json`,
	RunE: runDump,
}

func init() {
	rootCmd.AddCommand(dumpCmd)

	dumpCmd.Flags().IntVarP(&dumpOpts.count, "count", "n", 10,
		"Number of items to produce")
	dumpCmd.Flags().StringVar(&dumpOpts.seed, "seed", "",
		"Append items from a file (or - for stdin) before producing")
	dumpCmd.Flags().DurationVar(&dumpOpts.latency, "latency", 0,
		"Override the producer latency (default from config)")
	dumpCmd.Flags().DurationVar(&dumpOpts.interval, "interval", 0,
		"Override the producer interval (default from config)")

	dumpCmd.Flags().StringVarP(&dumpOpts.format, "format", "f", "dmenu",
		"Output format (dmenu, json, yaml, plain, table)")
	dumpCmd.Flags().StringVar(&dumpOpts.field, "field", "",
		"Output a single field per item (title, subtitle, all)")
	dumpCmd.Flags().StringVar(&dumpOpts.template, "template", "",
		"Custom Go template for dmenu lines")
	dumpCmd.Flags().BoolVar(&dumpOpts.index, "index", true,
		"Prefix dmenu lines with the 1-based index")
}

func runDump(cmd *cobra.Command, args []string) error {
	if dumpOpts.count < 0 {
		return fmt.Errorf("--count must not be negative")
	}

	format, err := output.ParseFormatType(dumpOpts.format)
	if err != nil {
		return err
	}

	ctx, stop := withSignals(cmd.Context())
	defer stop()

	coll := store.NewCollection()
	defer func() { _ = coll.Close() }()

	if err := seed(ctx, coll, dumpOpts.seed); err != nil {
		return err
	}

	snap, err := produce(ctx, coll, coll.Len()+dumpOpts.count)
	if err != nil {
		return err
	}

	items := snap.Items()
	if dumpOpts.field != "" {
		for _, item := range items {
			fmt.Fprintln(os.Stdout, output.FormatField(item, dumpOpts.field))
		}
		return nil
	}

	opts := output.DefaultFormatterOptions()
	opts.Template = dumpOpts.template
	opts.ShowIndex = dumpOpts.index
	opts.Session = coll.SessionID()

	return output.NewFormatter(format, opts).Format(os.Stdout, items)
}

// produce runs a producer on coll until it holds count items in total and returns
// the snapshot with exactly that many. Observers run on the loop's goroutine,
// which here is the caller's.
func produce(ctx context.Context, coll *store.Collection, count int) (store.Snapshot, error) {
	if coll.Len() >= count {
		return coll.Snapshot(), nil
	}

	latency := cfg.Producer.Latency.Duration()
	if dumpOpts.latency > 0 {
		latency = dumpOpts.latency
	}
	interval := cfg.Producer.Interval.Duration()
	if dumpOpts.interval > 0 {
		interval = dumpOpts.interval
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var last store.Snapshot
	sub := coll.Subscribe(func(snap store.Snapshot) {
		if snap.Len() == count {
			last = snap
			cancel()
		}
	})
	defer sub.Cancel()

	loop := producer.New(coll, producer.Options{
		Latency:  latency,
		Interval: interval,
		Logger:   logger,
	})
	if err := loop.Run(ctx); err != nil {
		return store.Snapshot{}, err
	}

	if last.Len() < count {
		return store.Snapshot{}, fmt.Errorf("interrupted after %d of %d items", coll.Len(), count)
	}
	return last, nil
}
