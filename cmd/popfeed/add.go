package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/popfeed/internal/dbus"
)

var addOpts struct {
	count   int
	trigger bool
	timeout time.Duration
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Append items to a running feed",
	Long: `Append items to a running popfeed or popfeed-popup over D-Bus.

By default this behaves like pressing "Add Item". With --trigger the
running producer is asked for an extra append instead; the request is
dropped if the producer is not running or already has one pending.`,
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().IntVarP(&addOpts.count, "count", "n", 1,
		"Number of items to add")
	addCmd.Flags().BoolVar(&addOpts.trigger, "trigger", false,
		"Ask the producer for an append instead of adding directly")
	addCmd.Flags().DurationVar(&addOpts.timeout, "timeout", 5*time.Second,
		"D-Bus call timeout")
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), addOpts.timeout)
	defer cancel()

	client, err := connectFeed(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for range addOpts.count {
		if addOpts.trigger {
			accepted, err := client.Trigger(ctx)
			if err != nil {
				return err
			}
			if !accepted {
				fmt.Fprintln(out, "trigger dropped")
			}
			continue
		}

		title, err := client.AddItem(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, title)
	}
	return nil
}

// connectFeed connects to the session bus and checks that a feed is running.
func connectFeed(ctx context.Context) (*dbus.Client, error) {
	client, err := dbus.NewClient()
	if err != nil {
		return nil, err
	}

	running, err := client.Running(ctx)
	if err != nil {
		return nil, err
	}
	if !running {
		return nil, fmt.Errorf("no running feed owns %s", dbus.BusName)
	}
	return client, nil
}
