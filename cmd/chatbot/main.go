// cmd/chatbot/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"resto-chatbot/internal/app"
	"resto-chatbot/internal/common/camunda"
	"resto-chatbot/internal/common/config"
	"resto-chatbot/internal/common/logger"
	"resto-chatbot/internal/common/observability"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "chatbot",
		Short:         "Restaurant chatbot: natural language questions over the menu store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: configs/config.yaml)")

	root.AddCommand(newServeCmd(), newAskCmd(), newWorkerCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

// bootstrap loads config and builds the app with logging and observability.
func bootstrap() (*app.App, *zap.Logger, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.NewZapAdapter(zapLog)
	obs := observability.New(cfg.App.Name, nil)

	a, err := app.New(cfg, log, app.WithObservability(obs))
	if err != nil {
		obs.Shutdown()
		_ = zapLog.Sync()
		return nil, nil, nil, err
	}

	cleanup := func() {
		a.Close()
		obs.Shutdown()
		_ = zapLog.Sync()
	}
	return a, zapLog, cleanup, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, cleanup, err := bootstrap()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, stop := signalContext()
			defer stop()
			return a.Serve(ctx)
		},
	}
}

func newAskCmd() *cobra.Command {
	var agent bool
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer one question and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, cleanup, err := bootstrap()
			if err != nil {
				return err
			}
			defer cleanup()

			answerer := a.Structured
			if agent {
				answerer = a.Agent
			}

			question := strings.Join(args, " ")
			ans, err := answerer.Answer(cmd.Context(), question)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ans.Text)
			return nil
		},
	}
	cmd.Flags().BoolVar(&agent, "agent", false, "use the keyword/customer-support agent instead of the structured query path")
	return cmd
}

func newWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the workflow job workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, zapLog, cleanup, err := bootstrap()
			if err != nil {
				return err
			}
			defer cleanup()

			if !a.Config.Camunda.Enabled {
				return fmt.Errorf("camunda.enabled is false")
			}

			client, err := camunda.NewClient(a.Config.Camunda)
			if err != nil {
				return err
			}
			defer client.Close()

			workers := a.StartWorkers(client.GetClient(), zapLog)

			ctx, stop := signalContext()
			defer stop()
			<-ctx.Done()

			for _, w := range workers {
				w.Stop()
			}
			return nil
		},
	}
}
