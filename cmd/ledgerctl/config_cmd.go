package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/JoeShih716/go-statement-ledger/internal/config"
)

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage server configuration files",
	}

	var path string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default server config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			pterm.Success.Printf("Default config written to %s\n", path)
			return nil
		},
	}
	initCmd.Flags().StringVarP(&path, "path", "p", "config/config.yaml", "output path")

	var checkPath string
	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Load a config file (with LEDGER_ env overrides) and print the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(checkPath)
			if err != nil {
				return err
			}
			pterm.DefaultTable.WithData(pterm.TableData{
				{"grpc_addr", cfg.Server.GRPCAddr},
				{"http_addr", cfg.Server.HTTPAddr},
				{"storage.driver", cfg.Storage.Driver},
				{"lock.driver", cfg.Lock.Driver},
				{"log.level", cfg.Log.Level},
			}).Render()
			pterm.Success.Println("Config OK")
			return nil
		},
	}
	checkCmd.Flags().StringVarP(&checkPath, "path", "p", "config/config.yaml", "config file")

	configCmd.AddCommand(initCmd, checkCmd)
	return configCmd
}
