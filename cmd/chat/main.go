package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/contrario/internal/cli"
	"github.com/zhouzirui/contrario/internal/client"
	"github.com/zhouzirui/contrario/internal/config"
	"github.com/zhouzirui/contrario/internal/logging"
	"github.com/zhouzirui/contrario/internal/model/persona"
	"github.com/zhouzirui/contrario/internal/session"
)

func main() {
	_ = godotenv.Load()
	cobra.CheckErr(newRootCommand().Execute())
}

func newRootCommand() *cobra.Command {
	cfg, err := config.LoadClient()
	cobra.CheckErr(err)

	var personaFlag string

	cmd := &cobra.Command{
		Use:          "chat",
		Short:        "Talk to a persona over the chat service",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := persona.ParseID(personaFlag)
			if err != nil {
				return err
			}

			logger := logging.Setup(os.Stderr, cfg.LogLevel, true)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
			defer stop()

			ctrl := session.New(
				client.New(client.Config{BaseURL: cfg.BaseURL, Timeout: cfg.Timeout}),
				session.WithPersona(id),
				session.WithLogger(logger),
			)

			line := liner.NewLiner()
			defer line.Close()
			line.SetCtrlCAborts(true)

			return cli.NewREPL(ctrl, persona.NewMemoryStore(persona.Seed()), line, cmd.OutOrStdout()).Run(ctx)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.BaseURL, "url", cfg.BaseURL, "chat service base URL")
	flags.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "per-request timeout (0 waits indefinitely)")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	flags.StringVarP(&personaFlag, "persona", "p", string(persona.Default), "initial persona (bastian, pirata, alieno)")

	return cmd
}
