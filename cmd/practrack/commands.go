package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/warp/practrack/export"
	"github.com/warp/practrack/practrack"
	"github.com/warp/practrack/roster"
)

// =============================================================================
// IMPORT
// =============================================================================

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Add students from a .csv, .xlsx or .xls class list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			rs, err := roster.Parse(f, filepath.Base(path))
			if err != nil {
				return err
			}

			return a.withService(func(svc *practrack.Service) error {
				res, msg, err := svc.ImportRoster(cmd.Context(), rs)
				if err != nil {
					return err
				}
				a.logger.Info("roster imported", "file", path, "added", res.Added, "duplicates", res.Duplicates, "empty", res.Empty)
				fmt.Fprintln(cmd.OutOrStdout(), msg.Message)
				return nil
			})
		},
	}
}

// =============================================================================
// SUMMARY
// =============================================================================

func newSummaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print completed / required / owed hours per student and site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(func(svc *practrack.Service) error {
				summary, err := svc.Summary(cmd.Context())
				if err != nil {
					return err
				}
				if summary.IsEmpty() {
					fmt.Fprintln(cmd.OutOrStdout(), "No students found. Upload a class list first.")
					return nil
				}
				return printSummary(cmd.OutOrStdout(), summary)
			})
		},
	}
}

func printSummary(w io.Writer, s practrack.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, col := range s.Columns() {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, col)
	}
	fmt.Fprintln(tw)

	for _, row := range s.Rows {
		fmt.Fprintf(tw, "%s\t%s", row.StudentName, row.StudentID)
		for _, p := range row.Sites {
			fmt.Fprintf(tw, "\t%s\t%s\t%s", p.Completed.StringFixed(2), p.Required.StringFixed(2), p.Owed.StringFixed(2))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

// =============================================================================
// EXPORT
// =============================================================================

func newExportCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:       "export records|summary|students",
		Short:     "Write a table to an .xlsx workbook",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"records", "summary", "students"},
		RunE: func(cmd *cobra.Command, args []string) error {
			what := args[0]
			if output == "" {
				output = what + ".xlsx"
			}

			return a.withService(func(svc *practrack.Service) error {
				table, err := buildTable(cmd, svc, what)
				if err != nil {
					return err
				}

				f, err := os.Create(output)
				if err != nil {
					return err
				}
				if err := export.Write(f, table); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}

				a.logger.Info("exported", "table", what, "rows", len(table.Rows), "file", output)
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows to %s\n", len(table.Rows), output)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default <table>.xlsx)")
	return cmd
}

func buildTable(cmd *cobra.Command, svc *practrack.Service, what string) (export.Table, error) {
	ctx := cmd.Context()
	switch what {
	case "records":
		entries, err := svc.Records(ctx)
		if err != nil {
			return export.Table{}, err
		}
		return export.RecordsTable(entries), nil
	case "summary":
		summary, err := svc.Summary(ctx)
		if err != nil {
			return export.Table{}, err
		}
		return export.SummaryTable(summary), nil
	case "students":
		students, err := svc.Students(ctx)
		if err != nil {
			return export.Table{}, err
		}
		return export.StudentsTable(students), nil
	}
	return export.Table{}, fmt.Errorf("unknown table %q (want records, summary or students)", what)
}

// =============================================================================
// RESET
// =============================================================================

func newResetCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all students and hours and every non-default site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to reset %s without --yes", a.cfg.DBPath)
			}
			return a.withService(func(svc *practrack.Service) error {
				res, err := svc.Reset(cmd.Context())
				if err != nil {
					return err
				}
				a.logger.Warn("system data reset", "db", a.cfg.DBPath)
				fmt.Fprintln(cmd.OutOrStdout(), res.Message)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the reset")
	return cmd
}

// =============================================================================
// SITES
// =============================================================================

func newSitesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sites",
		Short: "Manage site requirements",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List site requirements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(func(svc *practrack.Service) error {
				sites, err := svc.Sites(cmd.Context())
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "Site\tRequired Hours")
				for _, s := range sites {
					fmt.Fprintf(tw, "%s\t%s\n", s.SiteName, s.RequiredHours.StringFixed(1))
				}
				return tw.Flush()
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <name> <hours>",
		Short: "Add a site or update its required hours",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			hours, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("invalid hours %q: %w", args[1], err)
			}
			return a.withService(func(svc *practrack.Service) error {
				res, err := svc.SetSiteRequirement(cmd.Context(), args[0], hours)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), res.Message)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a site requirement (logged hours are kept)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(func(svc *practrack.Service) error {
				res, err := svc.DeleteSite(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), res.Message)
				return nil
			})
		},
	})

	return cmd
}
