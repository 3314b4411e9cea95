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

var (
	historyN      int
	historyFailed bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View sync history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		url := fmt.Sprintf("%s?n=%d&failed=%t", daemonURL("/history"), historyN, historyFailed)
		resp, err := http.Get(url)
		if err != nil {
			return fmt.Errorf("daemon not running: %w", err)
		}

		defer func(Body io.ReadCloser) {
			_ = Body.Close()
		}(resp.Body)

		if resp.StatusCode != http.StatusOK {
			var body map[string]string
			_ = json.NewDecoder(resp.Body).Decode(&body)
			return fmt.Errorf("history unavailable: %s", body["error"])
		}

		var histories []model.History
		if err := json.NewDecoder(resp.Body).Decode(&histories); err != nil {
			return err
		}

		if stats, err := fetchStats(); err == nil {
			fmt.Printf("total %d, success %d, failed %d\n\n", stats.Total, stats.Success, stats.Failed)
		}

		if len(histories) == 0 {
			fmt.Println("no history yet")
			return nil
		}

		for _, h := range histories {
			status := "✓"
			if h.Status == model.StatusFailed {
				status = "✗"
			}

			took := (time.Duration(h.DurationMs) * time.Millisecond).String()
			fmt.Printf("%s [%s] %-8s %-8s %s\n",
				status,
				h.StartedAt.Format("2006-01-02 15:04:05"),
				h.Reason,
				took,
				h.ErrMsg,
			)
		}

		return nil
	},
}

func fetchStats() (model.HistoryStats, error) {
	var stats model.HistoryStats

	resp, err := http.Get(daemonURL("/history/stats"))
	if err != nil {
		return stats, err
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return stats, fmt.Errorf("history stats unavailable: %s", resp.Status)
	}

	err = json.NewDecoder(resp.Body).Decode(&stats)
	return stats, err
}

func init() {
	historyCmd.Flags().IntVar(&historyN, "n", 20, "number of history entries to show")
	historyCmd.Flags().BoolVar(&historyFailed, "failed", false, "show failed passes only")
	rootCmd.AddCommand(historyCmd)
}
