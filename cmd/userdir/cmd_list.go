package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"userdir/cmd/userdir/ui"
	"userdir/internal/directory"
	"userdir/internal/logging"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	listSearch  string
	listSort    string
	listDesc    bool
	listDetails bool
)

// listCmd prints the displayed subset once and exits.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the user directory as a table",
	Long: `Fetches the users once, applies the search and sort, and prints the
result. Output is a styled table on a terminal and tab-separated text
otherwise.

Example:
  userdir list --search ann --sort email --desc`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Only users whose name or email contains this text")
	listCmd.Flags().StringVar(&listSort, "sort", "", "Sort column: name or email")
	listCmd.Flags().BoolVar(&listDesc, "desc", false, "Sort descending")
	listCmd.Flags().BoolVar(&listDetails, "details", false, "Include address and phone")
}

func runList(cmd *cobra.Command, args []string) error {
	col, err := directory.ParseSortColumn(listSort)
	if err != nil {
		return err
	}
	if listDesc && col == directory.SortNone {
		return fmt.Errorf("--desc requires --sort")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.Logging, logging.Options{Verbose: verbose})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger = log

	src := newSource(cfg, log)
	log.For(logging.CategoryBoot).Debug("listing users", sourceField(src))

	ctrl, err := newController(cfg, log, src)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := ctrl.Load(ctx); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error encountered: "+ctrl.Err())
		return errReported
	}

	ctrl.SetSearchTerm(listSearch)
	if col != directory.SortNone {
		ctrl.SetSortColumn(col)
		if listDesc {
			// Selecting the same column again reverses it.
			ctrl.SetSortColumn(col)
		}
	}

	out := cmd.OutOrStdout()
	table := buildTable(ctrl.Displayed(), listDetails)
	if !isTerminal(out) {
		_, err := io.WriteString(out, table.Plain())
		return err
	}

	styles := ui.NewStyles(ui.ThemeFor(cfg.UI.Theme))
	fmt.Fprint(out, table.View(styles))
	fmt.Fprintln(out, styles.Muted.Render(fmt.Sprintf("%d of %d users", len(ctrl.Displayed()), len(ctrl.Users()))))
	return nil
}

func buildTable(users []directory.User, details bool) *ui.SimpleTable {
	headers := []string{"Name", "Email", "Company"}
	if details {
		headers = append(headers, "Address", "Phone")
	}
	table := ui.NewSimpleTable("List of users", headers)
	for _, u := range users {
		if details {
			table.AddRow(u.Name, u.Email, u.Company, u.Address, u.Phone)
			continue
		}
		table.AddRow(u.Name, u.Email, u.Company)
	}
	return table
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
