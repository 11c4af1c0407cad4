package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"vecino/internal/bootstrap"
	reportdto "vecino/internal/modules/report/dto"
)

func newReportCmd(flags *globalFlags) *cobra.Command {
	report := &cobra.Command{Use: "report", Short: "Submit reports and manage evidence"}
	report.AddCommand(newSubmitCmd(flags), newAttemptsCmd(flags), newRetryEvidenceCmd(flags))
	return report
}

func newSubmitCmd(flags *globalFlags) *cobra.Command {
	var (
		input    reportdto.SubmitInput
		lat, lon float64
		evidence []string
		mimeType string
	)
	cmd := &cobra.Command{
		Use:   "submit --title <title> --category <id> --street <name> [--evidence <file>...]",
		Short: "Create a report and upload its evidence",
		RunE: func(cmd *cobra.Command, _ []string) error {
			latSet, lonSet := cmd.Flags().Changed("lat"), cmd.Flags().Changed("lon")
			if latSet != lonSet {
				return fmt.Errorf("--lat and --lon must be given together")
			}
			if latSet {
				input.Coordinate = &reportdto.CoordinateInput{Latitude: lat, Longitude: lon}
			}
			for _, path := range evidence {
				input.Evidence = append(input.Evidence, reportdto.EvidenceInput{Path: path, MimeType: mimeType})
			}
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.ReportCLI.Submit(ctx, input)
				if out.Outcome != "" && out.AttemptID != "" {
					printSubmission(cmd.OutOrStdout(), out)
				}
				return err
			})
		},
	}
	cmd.Flags().StringVar(&input.Title, "title", "", "report title")
	cmd.Flags().StringVar(&input.Description, "description", "", "free-text description")
	cmd.Flags().StringVar(&input.StreetName, "street", "", "street name")
	cmd.Flags().StringVar(&input.StreetNumber, "number", "", "street number")
	cmd.Flags().IntVar(&input.CategoryID, "category", 0, "category id (see `vecino categories`)")
	cmd.Flags().IntVar(&input.NeighborhoodBoardID, "board", 0, "neighbourhood board id (defaults to the category id)")
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude, skips device location")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude, skips device location")
	cmd.Flags().StringArrayVar(&evidence, "evidence", nil, "evidence file, repeatable")
	cmd.Flags().StringVar(&mimeType, "mime", "", "MIME type for every evidence file (sniffed when empty)")
	return cmd
}

func newAttemptsCmd(flags *globalFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "attempts",
		Short: "List recent submission attempts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				attempts, err := app.ReportCLI.Attempts(ctx, limit)
				if err != nil {
					return err
				}
				if len(attempts) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no attempts recorded")
					return nil
				}
				w := cmd.OutOrStdout()
				for _, a := range attempts {
					_, _ = fmt.Fprintf(w, "%s\t%s\t%s\treport=%d\tuploaded=%d\tfailed=%d\t%s\n",
						a.CreatedAt.Local().Format("2006-01-02 15:04"), a.Kind, a.Outcome, a.ReportID, a.Uploaded, len(a.Failed), a.Title)
					if a.Cause != "" {
						_, _ = fmt.Fprintf(w, "\tcause: %s\n", a.Cause)
					}
					for _, f := range a.Failed {
						_, _ = fmt.Fprintf(w, "\t#%d %s: %s\n", f.Index, f.URI, f.Error)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum attempts to show")
	return cmd
}

func newRetryEvidenceCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "retry-evidence <report-id> [file...]",
		Short: "Upload evidence again for an existing report",
		Long:  "Without files, the evidence that failed in the latest attempt for the report is retried.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reportID, err := strconv.Atoi(args[0])
			if err != nil || reportID <= 0 {
				return fmt.Errorf("invalid report id %q", args[0])
			}
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.ReportCLI.RetryEvidence(ctx, reportID, args[1:])
				if err != nil {
					return err
				}
				printSubmission(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
}

func printSubmission(w io.Writer, out reportdto.SubmitOutput) {
	switch out.Outcome {
	case "created":
		_, _ = fmt.Fprintf(w, "report %d created\n", out.ReportID)
	case "created_with_evidence_failures":
		_, _ = fmt.Fprintf(w, "report %d created, %d evidence file(s) failed:\n", out.ReportID, len(out.Failures))
		for _, f := range out.Failures {
			_, _ = fmt.Fprintf(w, "  #%d %s: %s\n", f.Index, f.URI, f.Error)
		}
		_, _ = fmt.Fprintf(w, "retry with `vecino report retry-evidence %d`\n", out.ReportID)
	default:
		_, _ = fmt.Fprintf(w, "report not created (attempt %s)\n", out.AttemptID)
		return
	}
	loc := out.Location
	switch {
	case loc.Latitude == 0 && loc.Longitude == 0:
	case loc.Reason != "":
		_, _ = fmt.Fprintf(w, "location %.6f,%.6f device=%t (%s)\n", loc.Latitude, loc.Longitude, loc.WasDeviceLocation, loc.Reason)
	default:
		_, _ = fmt.Fprintf(w, "location %.6f,%.6f device=%t\n", loc.Latitude, loc.Longitude, loc.WasDeviceLocation)
	}
}
