package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"budgetbook/internal/amqp"
	"budgetbook/internal/app"
	"budgetbook/internal/cli"
	"budgetbook/internal/core"
	"budgetbook/internal/export"
	"budgetbook/internal/ledger"
	"budgetbook/internal/log"
	"budgetbook/internal/reorder"
	"budgetbook/internal/services"
)

const usage = `usage: budgetbook <command> [flags]

commands:
  summary       show the month's totals
  setup         initialize a month (-mode import|blank, -yes to overwrite)
  category      add, update or delete a category
  transaction   add or delete a transaction
  move          move a category within or across sections
  section       add, rename or delete a custom section
  transactions  list the month's transactions by day
  cashflow      income vs expenses for recent months
  networth      show assets and liabilities
  export        write the month as CSV`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := context.Background()
	res, err := cli.OpenBackend(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to open backend", "error", err)
		os.Exit(1)
	}
	defer res.Close()

	var publisher amqp.Publisher
	if cfg.AMQPURL != "" {
		c, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			defer c.Close()
			publisher = c
		}
	}

	a, err := app.New(services.NewMonthService(res.Store, publisher), app.Options{
		User:             cfg.UserID,
		AutosaveDelay:    cfg.AutosaveDelay,
		NetWorthSeedFile: cfg.NetWorthSeedFile,
	})
	if err != nil {
		logger.Error("Failed to start", "error", err)
		os.Exit(1)
	}

	runErr := run(ctx, a, os.Args[1], os.Args[2:], os.Stdout)
	if err := a.Close(ctx); err != nil {
		logger.Error("Failed to save changes", "error", err)
		os.Exit(1)
	}
	if runErr != nil {
		fmt.Fprintln(os.Stderr, "error:", runErr)
		os.Exit(1)
	}
}

func run(ctx context.Context, a *app.App, cmd string, args []string, out io.Writer) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	month := fs.String("month", core.MonthKeyOf(a.Session.Selected().Time()).String(), "month as YYYY-MM")

	switch cmd {
	case "summary":
		if err := fs.Parse(args); err != nil {
			return err
		}
		if err := open(ctx, a, *month); err != nil {
			return err
		}
		return printSummary(a, out)

	case "setup":
		mode := fs.String("mode", "import", "import or blank")
		yes := fs.Bool("yes", false, "replace existing data")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if _, err := a.LoadHistory(ctx); err != nil {
			return err
		}
		if err := a.Session.Select(core.MonthKey(*month)); err != nil {
			return err
		}
		m := ledger.SetupImport
		if *mode == "blank" {
			m = ledger.SetupBlank
		}
		source, err := a.Setup(m, *yes)
		if errors.Is(err, ledger.ErrConfirmationRequired) {
			return fmt.Errorf("%s already has data; rerun with -yes to replace it", *month)
		}
		if err != nil {
			return err
		}
		if source != "" {
			fmt.Fprintf(out, "%s imported from %s\n", *month, source)
		} else {
			fmt.Fprintf(out, "%s created blank\n", *month)
		}
		return nil

	case "category":
		action := fs.String("action", "add", "add, update or delete")
		container := fs.String("container", string(core.ExpensesContainer), "income, expenses or section:<id>")
		index := fs.Int("index", 0, "category position (update, delete)")
		name := fs.String("name", "", "category name")
		budgeted := fs.String("budgeted", "", "budgeted amount")
		spent := fs.String("spent", "", "spent amount, for categories without transactions")
		icon := fs.String("icon", "", "icon name")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if err := open(ctx, a, *month); err != nil {
			return err
		}
		key, c := a.Session.Selected(), core.ContainerID(*container)
		if *action == "delete" {
			return a.Store.DeleteCategory(key, c, *index)
		}

		var cat core.Category
		if *action == "update" {
			snap, _ := a.Store.Get(key)
			items, ok := snap.Items(c)
			if !ok || *index < 0 || *index >= len(items) {
				return fmt.Errorf("%s[%d]: %w", c, *index, ledger.ErrNotFound)
			}
			cat = items[*index]
		} else if *action != "add" {
			return fmt.Errorf("unknown action %q", *action)
		}

		var err error
		fs.Visit(func(f *flag.Flag) {
			if err != nil {
				return
			}
			switch f.Name {
			case "name":
				cat.Name = *name
			case "icon":
				cat.Icon = *icon
			case "budgeted":
				cat.Budgeted, err = core.ParseAmount(*budgeted)
			case "spent":
				cat.Spent, err = core.ParseAmount(*spent)
			}
		})
		if err != nil {
			return err
		}
		if *action == "update" {
			return a.Store.UpdateCategory(key, c, *index, cat)
		}
		return a.Store.AddCategory(key, c, cat)

	case "transaction":
		action := fs.String("action", "add", "add or delete")
		id := fs.String("id", "", "transaction id (delete)")
		container := fs.String("container", string(core.ExpensesContainer), "income, expenses or section:<id>")
		index := fs.Int("index", 0, "category position")
		amount := fs.String("amount", "", "amount, e.g. 12.50")
		merchant := fs.String("merchant", "", "merchant")
		date := fs.String("date", "", "YYYY-MM-DD (default first day of the month)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if err := open(ctx, a, *month); err != nil {
			return err
		}
		switch *action {
		case "delete":
			return a.Store.DeleteTransaction(a.Session.Selected(), *id)
		case "add":
		default:
			return fmt.Errorf("unknown action %q", *action)
		}
		amt, err := core.ParseAmount(*amount)
		if err != nil {
			return err
		}
		d := core.DateOf(a.Session.Selected().Time())
		if *date != "" {
			if d, err = core.ParseDate(*date); err != nil {
				return err
			}
		}
		tx, err := a.Store.AddTransaction(a.Session.Selected(), core.ContainerID(*container), *index,
			core.Transaction{Date: d, Amount: amt, Merchant: *merchant})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "added transaction %s\n", tx.ID)
		return nil

	case "move":
		from := fs.String("from", string(core.ExpensesContainer), "source container")
		fromIndex := fs.Int("from-index", 0, "source position")
		to := fs.String("to", string(core.IncomeContainer), "destination container")
		toIndex := fs.Int("to-index", -1, "destination position (-1 appends)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if err := open(ctx, a, *month); err != nil {
			return err
		}
		target := reorder.AtEnd(core.ContainerID(*to))
		if *toIndex >= 0 {
			target = reorder.AtItem(reorder.Key{Container: core.ContainerID(*to), Index: *toIndex})
		}
		moved, err := a.Move(reorder.Key{Container: core.ContainerID(*from), Index: *fromIndex}, target)
		if err != nil {
			return err
		}
		if !moved {
			fmt.Fprintln(out, "nothing to move")
		}
		return nil

	case "section":
		action := fs.String("action", "add", "add, rename or delete")
		id := fs.String("id", "", "section id (rename, delete)")
		name := fs.String("name", "", "section name")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if err := open(ctx, a, *month); err != nil {
			return err
		}
		key := a.Session.Selected()
		switch *action {
		case "add":
			sid, err := a.Store.AddSection(key, *name)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "added section %s\n", core.SectionContainer(sid))
			return nil
		case "rename":
			return a.Store.RenameSection(key, *id, *name)
		case "delete":
			return a.Store.DeleteSection(key, *id)
		default:
			return fmt.Errorf("unknown action %q", *action)
		}

	case "transactions":
		if err := fs.Parse(args); err != nil {
			return err
		}
		if err := open(ctx, a, *month); err != nil {
			return err
		}
		groups, err := a.Store.TransactionsByDate(a.Session.Selected())
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, g := range groups {
			fmt.Fprintf(tw, "%s\t\t\t%s\n", g.Date, g.Total.StringFixed(2))
			for _, e := range g.Entries {
				fmt.Fprintf(tw, "\t%s\t%s\t%s\n", e.CategoryName, e.Merchant, e.Amount)
			}
		}
		return tw.Flush()

	case "cashflow":
		count := fs.Int("count", 6, "number of months")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if _, err := a.LoadHistory(ctx); err != nil {
			return err
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "Month\tIncome\tExpenses\tNet")
		for _, p := range a.Store.CashFlowRange(core.MonthKey(*month), *count) {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Month, p.Income.StringFixed(2), p.Expenses.StringFixed(2), p.Net().StringFixed(2))
		}
		return tw.Flush()

	case "networth":
		if err := fs.Parse(args); err != nil {
			return err
		}
		nw := a.NetWorth.NetWorth()
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, as := range nw.Assets {
			fmt.Fprintf(tw, "asset\t%s\t%s\n", as.Name, as.Value)
		}
		for _, l := range nw.Liabilities {
			fmt.Fprintf(tw, "liability\t%s\t%s\n", l.Name, l.Value)
		}
		t := a.NetWorth.Totals()
		fmt.Fprintf(tw, "net\t\t%s\n", t.Net.StringFixed(2))
		return tw.Flush()

	case "export":
		if err := fs.Parse(args); err != nil {
			return err
		}
		if err := open(ctx, a, *month); err != nil {
			return err
		}
		snap, _ := a.Session.Current()
		return export.WriteCSV(out, export.Rows(snap))

	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

// open loads the month and fails when it still needs setup.
func open(ctx context.Context, a *app.App, month string) error {
	key, err := core.ParseMonthKey(month)
	if err != nil {
		return err
	}
	found, err := a.Open(ctx, key)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%s needs setup; run: budgetbook setup -month %s", key, key)
	}
	return nil
}

func printSummary(a *app.App, out io.Writer) error {
	sum, err := a.Summary()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\tBudgeted\tActual\n", a.Session.Selected().Label())
	fmt.Fprintf(tw, "Income\t%s\t%s\n", sum.Income.Budgeted.StringFixed(2), sum.Income.Actual.StringFixed(2))
	fmt.Fprintf(tw, "Expenses\t%s\t%s\n", sum.Expenses.Budgeted.StringFixed(2), sum.Expenses.Actual.StringFixed(2))
	for _, s := range sum.Custom {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", strings.TrimSpace(s.Name), s.Budgeted.StringFixed(2), s.Actual.StringFixed(2))
	}
	fmt.Fprintf(tw, "Remaining\t\t%s\n", sum.Remaining.StringFixed(2))
	return tw.Flush()
}
