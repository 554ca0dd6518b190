package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/popfeed/internal/adapter/output"
	"github.com/jmylchreest/popfeed/internal/dbus"
)

var followOpts struct {
	format string
}

var followCmd = &cobra.Command{
	Use:   "follow",
	Short: "Print items as a running feed appends them",
	Long: `Print every item appended to a running feed until interrupted.

Each line is printed as soon as the feed announces it; items that were
already in the feed are not printed.

Examples:
  popfeed follow
  popfeed follow --format json | jq .title`,
	RunE: runFollow,
}

func init() {
	rootCmd.AddCommand(followCmd)

	followCmd.Flags().StringVarP(&followOpts.format, "format", "f", "dmenu",
		"Line format (dmenu, json)")
}

func runFollow(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormatType(followOpts.format)
	if err != nil {
		return err
	}
	if format != output.FormatDmenu && format != output.FormatJSON {
		return fmt.Errorf("follow supports dmenu and json, not %s", format)
	}

	ctx, stop := withSignals(cmd.Context())
	defer stop()

	client, err := connectFeed(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	dmenu := output.NewDmenuFormatter(output.DefaultFormatterOptions())
	jsonf := output.NewJSONFormatter(output.DefaultFormatterOptions())

	return client.Follow(ctx, func(e dbus.ItemAdded) {
		var err error
		if format == output.FormatJSON {
			err = jsonf.FormatSingle(out, e.Item)
		} else {
			_, err = fmt.Fprintln(out, dmenu.Line(e.Index, e.Item))
		}
		if err != nil {
			logger.Warn("failed to print item", "index", e.Index, "error", err)
		}
	})
}
