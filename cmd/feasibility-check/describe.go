package main

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/feasibility"
)

func describeCmd(app *cliApp) *cobra.Command {
	query := dto.DistributionQuery{}
	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Describe how a weekly subject load spreads over the school week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validator.New().Struct(query); err != nil {
				return fmt.Errorf("invalid arguments: %w", err)
			}

			out := cmd.OutOrStdout()
			d := feasibility.QuotaDistribution(query.PeriodsPerClass, query.WeekDays)
			fmt.Fprintln(out, feasibility.DescribeDistribution(query.PeriodsPerClass, query.WeekDays))
			fmt.Fprintf(out, "max per day:  %d\n", feasibility.MaxDailyPeriods(query.PeriodsPerClass, query.WeekDays))
			fmt.Fprintf(out, "heavy days:   %d\n", d.HeavyDays)
			fmt.Fprintf(out, "light days:   %d\n", d.LightDays)
			fmt.Fprintf(out, "idle days:    %d\n", d.IdleDays)
			if feasibility.NeedsSlotSpreadReview(query.PeriodsPerClass, query.WeekDays) {
				fmt.Fprintf(out, "note: the load repeats a period slot on more than %d days\n", feasibility.MaxSameSlotPerWeek)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&query.PeriodsPerClass, "periods", "p", 0, "Weekly periods of the subject per class")
	cmd.Flags().IntVarP(&query.WeekDays, "days", "d", 5, "Active school days")
	_ = cmd.MarkFlagRequired("periods")

	return cmd
}
