package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var statusOpts struct {
	timeout time.Duration
}

// WaybarStatus represents the Waybar custom module JSON format.
type WaybarStatus struct {
	Text    string `json:"text"`
	Alt     string `json:"alt,omitempty"`
	Tooltip string `json:"tooltip,omitempty"`
	Class   string `json:"class,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Output Waybar-compatible JSON status",
	Long: `Output the size of a running feed in Waybar's custom module JSON format.

This is designed to be used with Waybar's custom module:

  "custom/popfeed": {
    "exec": "popfeed status",
    "interval": 5,
    "return-type": "json",
    "on-click": "popfeed-popup"
  }

The class is "active" while a feed is running, "empty" when it has no
items yet, and "stopped" when no feed is running.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().DurationVar(&statusOpts.timeout, "timeout", 2*time.Second,
		"D-Bus call timeout")
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), statusOpts.timeout)
	defer cancel()

	client, err := connectFeed(ctx)
	if err != nil {
		logger.Debug("feed not reachable", "error", err)
		return outputStatus(cmd.OutOrStdout(), generateStatus(-1, ""))
	}

	count, err := client.Count(ctx)
	if err != nil {
		return outputStatus(cmd.OutOrStdout(), WaybarStatus{Alt: "error", Class: "error", Tooltip: err.Error()})
	}
	session, err := client.Session(ctx)
	if err != nil {
		logger.Debug("failed to read session", "error", err)
	}

	return outputStatus(cmd.OutOrStdout(), generateStatus(count, session))
}

// generateStatus builds the status for a feed holding count items.
// A negative count means no feed is running.
func generateStatus(count int, session string) WaybarStatus {
	switch {
	case count < 0:
		return WaybarStatus{Alt: "stopped", Class: "stopped", Tooltip: "popfeed is not running"}
	case count == 0:
		return WaybarStatus{Text: "0", Alt: "empty", Class: "empty", Tooltip: "No items yet"}
	}

	tooltip := humanize.Comma(int64(count)) + " items"
	if count == 1 {
		tooltip = "1 item"
	}
	if session != "" {
		tooltip += "\nsession " + session
	}

	return WaybarStatus{
		Text:    fmt.Sprintf("%d", count),
		Alt:     "active",
		Tooltip: tooltip,
		Class:   "active",
	}
}

// outputStatus writes the status as JSON.
func outputStatus(w io.Writer, status WaybarStatus) error {
	return json.NewEncoder(w).Encode(status)
}
