package commands

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the database is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, _, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		health := db.Health()
		if jsonOutput {
			if err := json.NewEncoder(cmd.OutOrStdout()).Encode(health); err != nil {
				return err
			}
		} else {
			keys := make([]string, 0, len(health))
			for k := range health {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", k, health[k])
			}
		}

		if health["status"] != "up" {
			return fmt.Errorf("database is down")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
