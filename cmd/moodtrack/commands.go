package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"moodtrack/internal/client"
	"moodtrack/internal/models"
	"moodtrack/internal/usecases"
)

func listCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print all mood entries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := a.cfg.Location()
			if err != nil {
				return err
			}
			board := client.NewMoodBoard(client.NewMoodClient(a.cfg.ServerURL), a.log, loc)
			if err := board.Refresh(cmd.Context()); err != nil {
				return err
			}
			return printEntries(cmd.OutOrStdout(), board.Entries(), loc)
		},
	}
}

func addCmd(a *app) *cobra.Command {
	var (
		moodType string
		level    int
		date     string
		clock    string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Log a mood entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := a.cfg.Location()
			if err != nil {
				return err
			}

			now := time.Now().In(loc)
			if date == "" {
				date = now.Format("2006-01-02")
			}
			if clock == "" {
				clock = now.Format("15:04")
			}

			req := models.CreateMoodRequest{Type: moodType, Date: date, Time: clock}
			if cmd.Flags().Changed("level") {
				req.MoodLevel = &level
			}

			board := client.NewMoodBoard(client.NewMoodClient(a.cfg.ServerURL), a.log, loc)
			saved, err := board.Add(cmd.Context(), req)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "logged %s %s (%s) as #%d\n",
				saved.MoodEmoji, saved.MoodLabel, models.TypeLabel(saved.Type), saved.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&moodType, "type", "daily", "category: daily, meditation, workout or any tag")
	cmd.Flags().IntVar(&level, "level", 0, "mood level 0 (angry) .. 5 (happy)")
	cmd.Flags().StringVar(&date, "date", "", "calendar date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&clock, "time", "", "time of day HH:MM (default now)")
	_ = cmd.MarkFlagRequired("level")

	return cmd
}

func deleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a mood entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}

			deleted, err := client.NewMoodClient(a.cfg.ServerURL).Delete(cmd.Context(), id)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "deleted #%d (%s %s on %s)\n", deleted.ID, models.TypeLabel(deleted.Type), deleted.MoodEmoji, deleted.Date)
			return nil
		},
	}
}

func trendCmd(a *app) *cobra.Command {
	var period, date string

	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Print the week or month mood trend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := usecases.ParsePeriod(period)
			if err != nil {
				return err
			}

			trend, err := client.NewMoodClient(a.cfg.ServerURL).Trend(cmd.Context(), p, date)
			if err != nil {
				return err
			}
			return printTrend(cmd.OutOrStdout(), trend)
		},
	}

	cmd.Flags().StringVar(&period, "period", "week", "week or month")
	cmd.Flags().StringVar(&date, "date", "", "any day inside the period, YYYY-MM-DD (default today)")

	return cmd
}

func printEntries(out io.Writer, entries []models.MoodEntry, loc *time.Location) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(out, "no mood entries yet")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTIME\tCATEGORY\tMOOD\tID")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s %s\t%d\n",
			formatEntryDate(e.Date, loc), formatEntryTime(e.Time), models.TypeLabel(e.Type), e.MoodEmoji, e.MoodLabel, e.ID)
	}
	return tw.Flush()
}

func printTrend(out io.Writer, trend models.Trend) error {
	categories := make([]string, 0)
	if len(trend.Days) > 0 {
		for _, t := range models.MoodTypes {
			categories = append(categories, t.ID)
		}
		others := make([]string, 0)
		for c := range trend.Days[0].Values {
			if models.TypeLabel(c) == c {
				others = append(others, c)
			}
		}
		sort.Strings(others)
		categories = append(categories, others...)
	}

	fmt.Fprintf(out, "%s %s .. %s\n", trend.Period, trend.Start, trend.End)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	header := []string{"DAY", "DATE"}
	for _, c := range categories {
		header = append(header, strings.ToUpper(c))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, d := range trend.Days {
		row := []string{d.Day, d.Date}
		for _, c := range categories {
			cell := "-"
			if v := d.Values[c]; v != nil {
				cell = strconv.Itoa(*v)
				if l, ok := models.LookupLevel(*v); ok {
					cell = l.Emoji + " " + cell
				}
			}
			row = append(row, cell)
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func formatEntryDate(date string, loc *time.Location) string {
	if d, err := time.ParseInLocation("2006-01-02", date, loc); err == nil {
		return d.Format("Monday, 02 Jan 2006")
	}
	if t, err := time.Parse(time.RFC3339, date); err == nil {
		return t.In(loc).Format("Monday, 02 Jan 2006")
	}
	return date
}

func formatEntryTime(clock string) string {
	if t, err := time.Parse("15:04", clock); err == nil {
		return t.Format("3:04 PM")
	}
	return clock
}
