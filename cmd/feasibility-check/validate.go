package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/feasibility"
	"github.com/noah-isme/sma-timetable-api/internal/models"
)

type validateOptions struct {
	snapshotPath     string
	format           string
	edgeDefault      int
	densityThreshold float64
}

type validationOutput struct {
	Warnings []models.ValidationWarning `json:"warnings"`
	Summary  feasibility.Summary        `json:"summary"`
}

func validateCmd(app *cliApp) *cobra.Command {
	opts := &validateOptions{}
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a snapshot file (yaml or json)",
		Long: `Runs every feasibility check against a snapshot file and prints the warnings.
Exits with status 2 when any error-level warning is found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := loadSnapshot(opts.snapshotPath)
			if err != nil {
				return err
			}
			app.logger.Debug("snapshot loaded",
				zap.String("path", opts.snapshotPath),
				zap.Int("subjects", len(snapshot.Subjects)),
				zap.Int("teachers", len(snapshot.Teachers)),
				zap.Int("classes", snapshot.ClassCount))

			engine := feasibility.NewValidator(feasibility.Options{
				EdgeCapacityDefault: opts.edgeDefault,
				DensityThreshold:    opts.densityThreshold,
			})
			warnings := engine.Validate(snapshot)
			out := validationOutput{Warnings: warnings, Summary: feasibility.Summarize(warnings)}

			switch strings.ToLower(opts.format) {
			case "json":
				err = writeJSON(cmd.OutOrStdout(), out)
			case "table", "":
				err = writeTable(cmd.OutOrStdout(), out)
			default:
				return fmt.Errorf("unsupported format %q (use table or json)", opts.format)
			}
			if err != nil {
				return err
			}

			app.logger.Info("validation finished",
				zap.Int("errors", out.Summary.ErrorCount),
				zap.Int("warnings", out.Summary.WarningCount))
			if out.Summary.Blocked {
				return errBlocked
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.snapshotPath, "snapshot", "s", "", "Path to the snapshot file")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "table", "Output format: table or json")
	cmd.Flags().IntVar(&opts.edgeDefault, "edge-default", 0, "Weekly first/last period cap for uncapped teachers (0 = one per active day)")
	cmd.Flags().Float64Var(&opts.densityThreshold, "density-threshold", feasibility.DefaultDensityThreshold, "Exclusion ratio that triggers the density warning")
	_ = cmd.MarkFlagRequired("snapshot")

	return cmd
}

// loadSnapshot decodes a snapshot file, picking the decoder from its extension.
func loadSnapshot(path string) (feasibility.Snapshot, error) {
	var snapshot feasibility.Snapshot
	raw, err := os.ReadFile(path)
	if err != nil {
		return snapshot, fmt.Errorf("read snapshot: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(raw, &snapshot)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &snapshot)
	default:
		return snapshot, fmt.Errorf("unsupported snapshot extension %q", filepath.Ext(path))
	}
	if err != nil {
		return snapshot, fmt.Errorf("decode snapshot %s: %w", filepath.Base(path), err)
	}

	req := dto.CheckRequest{
		Settings:   snapshot.Settings,
		Subjects:   snapshot.Subjects,
		Teachers:   snapshot.Teachers,
		Timing:     snapshot.Timing,
		ClassCount: snapshot.ClassCount,
	}.Normalized()
	if err := validator.New().Struct(req); err != nil {
		return snapshot, fmt.Errorf("invalid snapshot: %w", err)
	}
	return req.Snapshot(), nil
}

func writeJSON(w io.Writer, out validationOutput) error {
	if out.Warnings == nil {
		out.Warnings = []models.ValidationWarning{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeTable(w io.Writer, out validationOutput) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LEVEL\tTYPE\tID\tRELATED\tMESSAGE")
	for _, warning := range out.Warnings {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			warning.Level, dash(string(warning.Type)), warning.ID, dash(warning.RelatedID), warning.Message)
		if warning.Suggestion != "" {
			fmt.Fprintf(tw, "\t\t\t\t→ %s\n", warning.Suggestion)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d error(s), %d warning(s), %d info\n",
		out.Summary.ErrorCount, out.Summary.WarningCount, out.Summary.InfoCount)
	return err
}

func dash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
