package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dgenny/propostas/internal/app"
	"github.com/dgenny/propostas/internal/config"
	"github.com/dgenny/propostas/internal/service"
)

// serviceFactory собирает сервис предложений для команды. Подменяется в тестах.
type serviceFactory func(cmd *cobra.Command) (*service.ProposalService, func() error, error)

func rootCmd() *cobra.Command {
	return newRootCmd(defaultFactory)
}

func newRootCmd(factory serviceFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Administrative commands for the proposal store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		reindexCmd(factory),
		listCmd(factory),
		getCmd(factory),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)
	return cmd
}

func defaultFactory(cmd *cobra.Command) (*service.ProposalService, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	app.SetupLogging(cfg)
	return app.NewService(cmd.Context(), cfg)
}

func reindexCmd(factory serviceFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the listing index from stored records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, factory, func(svc *service.ProposalService) error {
				n, err := svc.Reindex(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "indexed %d proposals (%s)\n", n, svc.Backend())
				return nil
			})
		},
	}
}

func listCmd(factory serviceFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the newest proposals as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, factory, func(svc *service.ProposalService) error {
				items, err := svc.List(cmd.Context())
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), items)
			})
		},
	}
}

func getCmd(factory serviceFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Print one proposal as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, factory, func(svc *service.ProposalService) error {
				p, err := svc.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), p)
			})
		},
	}
}

func withService(cmd *cobra.Command, factory serviceFactory, fn func(*service.ProposalService) error) error {
	svc, closeFn, err := factory(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()
	return fn(svc)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
