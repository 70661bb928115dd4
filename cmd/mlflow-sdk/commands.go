package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/gate4ai/mlflow-tracking/config"
	"github.com/gate4ai/mlflow-tracking/schema"
	"github.com/gate4ai/mlflow-tracking/tracking"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newRootCommand builds the mlflow-sdk command tree.
//
// Commands provided:
//   - experiments [--filter]
//   - runs <experiment-id> [--filter]
//   - models [--filter]
//   - versions <model-name>
//   - pull <model-name> <version-or-stage> [--out]
//
// Global flags: --config, --json
func newRootCommand() *cobra.Command {
	var (
		configPath string
		jsonOutput bool
	)

	// Client and logger are created in PersistentPreRunE once flags are
	// parsed.
	var (
		sdk    *tracking.Client
		logger *zap.Logger
	)

	cmd := &cobra.Command{
		Use:   "mlflow-sdk",
		Short: "Query an MLflow tracking server",
		Long:  "Search experiments, runs, and registry models, with paginated results consolidated into single listings.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}

			var (
				cfg *config.Config
				err error
			)
			if configPath != "" {
				cfg, err = config.FromFile(configPath)
			} else {
				cfg, err = config.FromEnv()
			}
			if err != nil {
				return err
			}

			logger, err = cfg.Logger()
			if err != nil {
				return err
			}

			sdk, err = tracking.New(cfg, logger)
			if err != nil {
				return err
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file (environment variables override it)")
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	cmd.AddCommand(experimentsCmd(&sdk, &jsonOutput))
	cmd.AddCommand(runsCmd(&sdk, &jsonOutput))
	cmd.AddCommand(modelsCmd(&sdk, &jsonOutput))
	cmd.AddCommand(versionsCmd(&sdk, &jsonOutput))
	cmd.AddCommand(pullCmd(&sdk))

	return cmd
}

func experimentsCmd(sdk **tracking.Client, jsonOutput *bool) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "experiments",
		Short: "List experiments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			experiments, err := (*sdk).GetExperiments(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if *jsonOutput {
				return writeJSON(cmd.OutOrStdout(), experiments)
			}

			w := newTable(cmd.OutOrStdout())
			fmt.Fprintln(w, "ID\tNAME\tSTAGE\tCREATED")
			for _, e := range experiments {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.ExperimentID, e.Name, e.LifecycleStage, formatMillis(e.CreationTime))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "Server-side filter expression")
	return cmd
}

func runsCmd(sdk **tracking.Client, jsonOutput *bool) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "runs <experiment-id>",
		Short: "List runs of an experiment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := (*sdk).GetExperimentRuns(cmd.Context(), args[0], filter)
			if err != nil {
				return err
			}
			if *jsonOutput {
				return writeJSON(cmd.OutOrStdout(), runs)
			}

			w := newTable(cmd.OutOrStdout())
			fmt.Fprintln(w, "RUN ID\tNAME\tSTATUS\tSTARTED")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Info.RunID, r.Info.RunName, r.Info.Status, formatMillis(r.Info.StartTime))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "Server-side filter expression")
	return cmd
}

func modelsCmd(sdk **tracking.Client, jsonOutput *bool) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List registered models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			models, err := (*sdk).GetRegisteredModels(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if *jsonOutput {
				return writeJSON(cmd.OutOrStdout(), models)
			}

			w := newTable(cmd.OutOrStdout())
			fmt.Fprintln(w, "NAME\tLATEST VERSIONS\tUPDATED")
			for _, m := range models {
				fmt.Fprintf(w, "%s\t%s\t%s\n", m.Name, formatLatest(m.LatestVersions), formatMillis(m.LastUpdatedTimestamp))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "Server-side filter expression")
	return cmd
}

func versionsCmd(sdk **tracking.Client, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "versions <model-name>",
		Short: "List all versions of a registered model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			versions, err := (*sdk).GetModelVersions(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if *jsonOutput {
				return writeJSON(cmd.OutOrStdout(), versions)
			}

			w := newTable(cmd.OutOrStdout())
			fmt.Fprintln(w, "VERSION\tSTAGE\tSTATUS\tRUN ID")
			for _, v := range versions {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", v.Version, v.CurrentStage, v.Status, v.RunID)
			}
			return w.Flush()
		},
	}
}

func pullCmd(sdk **tracking.Client) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "pull <model-name> <version-or-stage>",
		Short: "Download a model's artifacts",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			model, err := (*sdk).LoadModelByURI(ctx, tracking.FormatModelURI(args[0], args[1]))
			if err != nil {
				return err
			}
			if outDir == "" {
				outDir = fmt.Sprintf("%s-v%s", model.Name, model.Version)
			}
			if err := (*sdk).DownloadModel(ctx, model, outDir); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Downloaded %s version %s to %s\n", model.Name, model.Version, outDir)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Destination directory (default <name>-v<version>)")
	return cmd
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatMillis(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}

func formatLatest(versions []schema.ModelVersion) string {
	if len(versions) == 0 {
		return "-"
	}
	out := ""
	for i, v := range versions {
		if i > 0 {
			out += ", "
		}
		out += v.CurrentStage + ":" + v.Version
	}
	return out
}
