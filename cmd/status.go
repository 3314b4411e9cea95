package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"syncd/internal/model"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "View daemon status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := http.Get(daemonURL("/status"))
		if err != nil {
			return fmt.Errorf("daemon not running: %w", err)
		}

		defer func(Body io.ReadCloser) {
			_ = Body.Close()
		}(resp.Body)

		var snap model.Snapshot
		if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
			return fmt.Errorf("failed to decode status response: %w", err)
		}

		lastSync := "-"
		if snap.LastSync != nil {
			lastSync = snap.LastSync.Format("2006-01-02 15:04:05")
		}

		fmt.Printf("%-12s %s\n", "SRC", snap.Source)
		fmt.Printf("%-12s %s\n", "DST", snap.Destination)
		fmt.Printf("%-12s %s\n", "UPTIME", time.Since(snap.StartedAt).Round(time.Second))
		fmt.Printf("%-12s %d\n", "SYNCED", snap.Synced)
		fmt.Printf("%-12s %d\n", "FAILED", snap.Failed)
		fmt.Printf("%-12s %s\n", "LAST SYNC", lastSync)
		fmt.Printf("%-12s %t\n", "PENDING", snap.Pending)
		if snap.LastError != "" {
			fmt.Printf("%-12s %s\n", "LAST ERROR", snap.LastError)
		}
		if stats, err := fetchStats(); err == nil {
			fmt.Printf("%-12s %d (%d failed)\n", "ALL TIME", stats.Total, stats.Failed)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
