package commands

import (
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"shop-catalog/internal/config"
	"shop-catalog/internal/notify"
	"shop-catalog/internal/server"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch-purchases",
	Short: "Print purchase events as they are published",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		client, err := server.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer client.Close()

		out := cmd.OutOrStdout()
		enc := json.NewEncoder(out)
		err = notify.Subscribe(ctx, client, cfg.Catalog.PurchaseChannel, log, func(event notify.PurchaseEvent) {
			if jsonOutput {
				enc.Encode(event)
				return
			}
			fmt.Fprintf(out, "%s product=%d user=%d count=%d remaining=%d\n",
				event.At.Format("15:04:05"), event.ProductID, event.UserID, event.Count, event.Remaining)
		})
		if ctx.Err() != nil {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
