package cmd

import (
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
)

var resyncCmd = &cobra.Command{
	Use:   "resync",
	Short: "Ask the running daemon for another sync pass",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := http.Post(daemonURL("/sync"), "application/json", nil)
		if err != nil {
			return fmt.Errorf("daemon not running: %w", err)
		}

		defer func(Body io.ReadCloser) {
			_ = Body.Close()
		}(resp.Body)

		if resp.StatusCode != http.StatusAccepted {
			return fmt.Errorf("unexpected response: %s", resp.Status)
		}

		fmt.Println("sync scheduled")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resyncCmd)
}
