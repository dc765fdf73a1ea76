package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/herdcare/internal/care"
	"github.com/mamadbah2/herdcare/pkg/dates"
)

func newDueCmd(app *cliApp) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "due <tag>",
		Short: "Show the vaccination schedule of a goat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withServices(cmd.Context(), func(s services) error {
				due, err := s.herd.GoatDueInfo(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), due)
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "VACCINE\tNEXT DUE\tSTATUS\tLAST GIVEN\tDOSES")
				for _, d := range due.Due {
					status := string(d.Status)
					if d.Scheduled {
						status += " (scheduled)"
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
						d.Vaccine.Name, dates.Format(d.NextDue), status, orDash(dates.FormatOptional(d.LastGiven)), d.DosesGiven)
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output in JSON format")
	return cmd
}

func newReadyCmd(app *cliApp) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "ready",
		Short: "List does ready to mate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withServices(cmd.Context(), func(s services) error {
				does, err := s.herd.ReadyDoes(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					if does == nil {
						does = []care.ReadyDoe{}
					}
					return writeJSON(cmd.OutOrStdout(), does)
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "TAG\tLAST MATING END\tDAYS SINCE")
				for _, d := range does {
					lastEnd, days := "-", "-"
					if d.Breeding != nil {
						lastEnd = orDash(dates.FormatOptional(d.Breeding.MatingEnd))
					}
					if d.DaysSince != nil {
						days = strconv.Itoa(*d.DaysSince)
					}
					fmt.Fprintf(w, "%s\t%s\t%s\n", d.Doe.Tag, lastEnd, days)
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output in JSON format")
	return cmd
}

func newOverdueCmd(app *cliApp) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "overdue",
		Short: "List overdue vaccinations across the herd",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withServices(cmd.Context(), func(s services) error {
				rows, err := s.reports.OverdueReport(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), rows)
				}
				if len(rows) == 0 {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), "No overdue vaccinations.")
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "TAG\tTYPE\tVACCINE\tLAST GIVEN\tNEXT DUE\tDAYS OVERDUE")
				for _, r := range rows {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n",
						r.GoatTag, orDash(r.GoatType), r.Vaccine, orDash(dates.FormatOptional(r.LastGiven)), dates.Format(r.NextDue), r.DaysOverdue)
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output in JSON format")
	return cmd
}

func newCalendarCmd(app *cliApp) *cobra.Command {
	var (
		asJSON   bool
		from, to string
	)

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show farm events, matings and vaccinations in a date window",
		Long:  "Without --from and --to the window runs from today over the next 30 days.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := optionalDay("from", from)
			if err != nil {
				return err
			}
			end, err := optionalDay("to", to)
			if err != nil {
				return err
			}

			return app.withServices(cmd.Context(), func(s services) error {
				feed, err := s.herd.CalendarFeed(cmd.Context(), start, end)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), feed)
				}

				for _, warning := range feed.Warnings {
					fmt.Fprintln(cmd.ErrOrStderr(), "warning:", warning)
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "DATE\tCATEGORY\tTITLE")
				for _, e := range feed.Entries {
					fmt.Fprintf(w, "%s\t%s\t%s\n", dates.Format(e.Start), e.Category, e.Title)
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output in JSON format")
	cmd.Flags().StringVar(&from, "from", "", "first day of the window (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last day of the window (YYYY-MM-DD)")
	return cmd
}

func optionalDay(flag, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	day, err := dates.Parse(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: %w", flag, err)
	}
	return day, nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
