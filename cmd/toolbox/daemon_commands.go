package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"toolbox/internal/ipc"
	"toolbox/internal/textutil"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and job status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Status()
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()

				fmt.Fprintf(stdout, "Daemon running: %s\n", yesNo(resp.Running))
				if resp.Active {
					fmt.Fprintf(stdout, "Active job: %s (%s", resp.JobID, resp.Kind)
					if resp.PID > 0 {
						fmt.Fprintf(stdout, ", pid %d", resp.PID)
					}
					fmt.Fprintln(stdout, ")")
					if p := resp.Progress; p != nil {
						fmt.Fprintf(stdout, "Progress: %.0f%%", p.Percent)
						if p.Stage != "" {
							fmt.Fprintf(stdout, " %s", p.Stage)
						}
						if p.Time != "" {
							fmt.Fprintf(stdout, " at %s", p.Time)
						}
						if p.Speed != "" {
							fmt.Fprintf(stdout, " (%s)", p.Speed)
						}
						fmt.Fprintln(stdout)
					}
				} else {
					fmt.Fprintln(stdout, "Active job: none")
				}
				if r := resp.LastResult; r != nil {
					fmt.Fprintf(stdout, "Last job: %s %s", textutil.TitleWords(r.Kind), r.Outcome)
					if r.OutputPath != "" {
						fmt.Fprintf(stdout, " -> %s", r.OutputPath)
					}
					if r.Message != "" {
						fmt.Fprintf(stdout, " (%s)", r.Message)
					}
					fmt.Fprintln(stdout)
				}

				if len(resp.Dependencies) > 0 {
					fmt.Fprintln(stdout)
					rows := make([][]string, 0, len(resp.Dependencies))
					for _, dep := range resp.Dependencies {
						detail := dep.Detail
						if detail == "" {
							detail = dep.Command
						}
						rows = append(rows, []string{dep.Name, yesNo(dep.Available), detail})
					}
					fmt.Fprintln(stdout, renderTable(
						[]string{"Tool", "Available", "Detail"}, rows,
						[]columnAlignment{alignLeft, alignLeft, alignLeft}))
				}
				return nil
			})
		},
	}
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var clear bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent job outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				stdout := cmd.OutOrStdout()
				if clear {
					if _, err := client.HistoryClear(); err != nil {
						return err
					}
					fmt.Fprintln(stdout, "History cleared")
					return nil
				}

				resp, err := client.History(limit)
				if err != nil {
					return err
				}
				if len(resp.Entries) == 0 {
					fmt.Fprintln(stdout, "No history entries")
					return nil
				}
				rows := make([][]string, 0, len(resp.Entries))
				for _, entry := range resp.Entries {
					detail := entry.OutputPath
					if detail == "" {
						detail = entry.Message
					}
					rows = append(rows, []string{
						strconv.FormatInt(entry.ID, 10),
						entry.FinishedAt.Local().Format("2006-01-02 15:04:05"),
						textutil.TitleWords(entry.Kind),
						entry.Outcome,
						detail,
					})
				}
				fmt.Fprintln(stdout, renderTable(
					[]string{"ID", "Finished", "Kind", "Outcome", "Detail"}, rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft}))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum number of entries to show")
	cmd.Flags().BoolVar(&clear, "clear", false, "Remove all history entries")
	return cmd
}

func newCancelCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel",
		Short: "Cancel the active job",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Cancel()
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if resp.Cancelled {
					fmt.Fprintln(stdout, "Cancellation requested")
				} else {
					fmt.Fprintln(stdout, "No active job")
				}
				return nil
			})
		},
	}
}

func newStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the toolbox daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.Stop(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Daemon stopping")
				return nil
			})
		},
	}
}
