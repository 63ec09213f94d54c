package main

import (
	"context"
	"fmt"
	"time"

	"paylands-gateway/internal/checkout"
	"paylands-gateway/internal/logger"
	"paylands-gateway/internal/metrics"
	"paylands-gateway/internal/paylands"
	"paylands-gateway/internal/payment"

	"github.com/spf13/cobra"
)

func checkCmd(d deps) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the gateway configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := d.loadConfig()
			if err != nil {
				return err
			}
			pc := cfg.Paylands()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Mode:      %s\n", pc.Mode)
			fmt.Fprintf(out, "Endpoint:  %s\n", pc.Endpoint())
			fmt.Fprintf(out, "Service:   %s\n", valueOrNone(pc.Service))
			fmt.Fprintf(out, "API key:   %s\n", keyStatus(pc.APIKey))
			fmt.Fprintf(out, "Signature: %s\n", keyStatus(pc.Signature))

			if err := pc.Validate(); err != nil {
				return err
			}
			fmt.Fprintln(out, "Configuration OK")
			return nil
		},
	}
}

func statusCmd(d deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [remote-id]",
		Short: "Fetch an order from Paylands and show its reconciliation input",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := d.loadConfig()
			if err != nil {
				return err
			}

			timeout, _ := cmd.Flags().GetDuration("timeout")
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			pc := cfg.Paylands()
			if err := pc.ValidateMode(); err != nil {
				return err
			}

			client := paylands.NewClient(pc, d.httpClient)
			body, err := client.GetOrder(ctx, args[0])
			if err != nil {
				return err
			}

			raw, _ := cmd.Flags().GetBool("raw")
			if raw {
				fmt.Fprintln(cmd.OutOrStdout(), string(body))
				return nil
			}

			in, err := checkout.ParsePayload(body)
			if err != nil {
				return err
			}
			printInput(cmd, in)
			return nil
		},
	}

	cmd.Flags().Bool("raw", false, "Print the response body as returned")
	cmd.Flags().Duration("timeout", 30*time.Second, "Overall deadline")

	return cmd
}

func resyncCmd(d deps) *cobra.Command {
	return &cobra.Command{
		Use:   "resync [order-id]",
		Short: "Re-verify the latest payment of an order against Paylands",
		Long: `Runs the same verification as a buyer returning from the payment page:
the latest payment of the order is looked up at Paylands and completed
when the gateway reports success.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := d.loadConfig()
			if err != nil {
				return err
			}
			pc := cfg.Paylands()
			if err := pc.ValidateMode(); err != nil {
				return err
			}
			logger.Init(cfg.AppEnv)
			defer logger.Sync()

			store, closeStore, err := d.openStore(cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			stats := &metrics.CallbackStats{}
			client := paylands.NewClient(pc, d.httpClient)
			reconciler := checkout.NewReconciler(store, client, stats)

			out := cmd.OutOrStdout()
			err = reconciler.HandleReturn(cmd.Context(), args[0])
			if de, ok := payment.IsDecline(err); ok {
				fmt.Fprintf(out, "Order %s: declined (%s)\n", args[0], de.Error())
				return nil
			}
			if err != nil {
				return err
			}

			if stats.AlreadyCompleted.Load() > 0 {
				fmt.Fprintf(out, "Order %s: already completed\n", args[0])
				return nil
			}
			fmt.Fprintf(out, "Order %s: completed\n", args[0])
			return nil
		},
	}
}

func printInput(cmd *cobra.Command, in *checkout.ReconciliationInput) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Shape:       %s\n", in.Shape)
	fmt.Fprintf(out, "Order:       %s\n", valueOrNone(in.OrderRef))
	fmt.Fprintf(out, "Transaction: %s\n", valueOrNone(in.TransactionID))

	switch {
	case !in.HasStatus:
		fmt.Fprintln(out, "Status:      unknown")
	case in.Success:
		fmt.Fprintln(out, "Status:      SUCCESS")
	default:
		fmt.Fprintf(out, "Status:      declined (code %s: %s)\n", valueOrNone(in.Code), valueOrNone(in.Message))
	}
}

func keyStatus(v string) string {
	if v == "" {
		return "missing"
	}
	return "set"
}

func valueOrNone(v string) string {
	if v == "" {
		return "(none)"
	}
	return v
}
