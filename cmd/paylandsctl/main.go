package main

import (
	"fmt"
	"net/http"
	"os"

	"paylands-gateway/internal/config"
	"paylands-gateway/internal/db"
	"paylands-gateway/internal/payment"

	"github.com/spf13/cobra"
)

var Version = "dev"

// deps are swapped in tests.
type deps struct {
	loadConfig func() (*config.Config, error)
	httpClient *http.Client
	openStore  func(cfg *config.Config) (payment.Repository, func() error, error)
}

func defaultDeps() deps {
	return deps{
		loadConfig: config.Load,
		openStore: func(cfg *config.Config) (payment.Repository, func() error, error) {
			database, err := db.NewDatabase(cfg)
			if err != nil {
				return nil, nil, err
			}
			return payment.NewRepository(database), database.Close, nil
		},
	}
}

func main() {
	if err := newRootCmd(defaultDeps()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(d deps) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "paylandsctl",
		Short:         "Operator tool for the Paylands payment gateway",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(checkCmd(d))
	rootCmd.AddCommand(statusCmd(d))
	rootCmd.AddCommand(resyncCmd(d))

	return rootCmd
}
