package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/inferschema"
	"github.com/aretw0/inferschema/internal/cli"
	"github.com/aretw0/inferschema/internal/config"
	"github.com/aretw0/inferschema/pkg/schema"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "inferschema",
	Short: "inferschema validates inference payloads against typed records",
	Long: `inferschema decodes, validates and normalizes JSON payloads of inference
tasks such as text-to-speech, and manages user-defined records.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx := cli.NewSignalContext(context.Background())
	defer ctx.Cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		ctx.Cancel()
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (YAML or JSON)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level override: debug, info, warn or error")
}

// env bundles what every command needs.
type env struct {
	holder  *config.Holder
	logger  *slog.Logger
	catalog *inferschema.Catalog
	close   func() error
}

func setup(ctx context.Context, cmd *cobra.Command, hooks ...inferschema.Hooks) (*env, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv(config.EnvPrefix + "CONFIG")
	}

	holder, err := config.NewHolder(path, nil)
	if err != nil {
		return nil, err
	}

	level := holder.Get().Log.Level
	if cmd.Flags().Changed("log-level") {
		level, _ = cmd.Flags().GetString("log-level")
	}
	logger, err := cli.NewLogger(level)
	if err != nil {
		return nil, err
	}
	holder.SetLogger(logger)

	cat, closeStore, err := cli.NewCatalog(ctx, holder.Get(), logger, hooks...)
	if err != nil {
		return nil, err
	}
	cli.Follow(holder, cat)

	return &env{holder: holder, logger: logger, catalog: cat, close: closeStore}, nil
}

// decodeOptions reads the per-call --unknown and --max-depth flags.
func decodeOptions(cmd *cobra.Command) ([]schema.Option, error) {
	var opts []schema.Option
	if cmd.Flags().Changed("unknown") {
		raw, _ := cmd.Flags().GetString("unknown")
		p, err := schema.ParseUnknownFieldPolicy(raw)
		if err != nil {
			return nil, err
		}
		opts = append(opts, schema.WithUnknownFields(p))
	}
	if cmd.Flags().Changed("max-depth") {
		n, _ := cmd.Flags().GetInt("max-depth")
		opts = append(opts, schema.WithMaxDepth(n))
	}
	return opts, nil
}

func addDecodeFlags(cmd *cobra.Command) {
	cmd.Flags().String("unknown", "", "Undeclared keys: drop, reject or preserve (default from config)")
	cmd.Flags().Int("max-depth", 0, "Maximum nesting depth (default from config)")
}
