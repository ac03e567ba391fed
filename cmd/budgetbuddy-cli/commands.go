package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"budgetbuddy/internal/client"
	"budgetbuddy/internal/core"
)

const dateLayout = "2006-01-02"

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func runRegister(ctx context.Context, app *client.App, args []string, stdout io.Writer) error {
	fs := newFlagSet("register")
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	msg, err := app.Register(ctx, *name, *email)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s (%s)\n", msg, app.User.Email)
	fmt.Fprintf(stdout, "%d transaction(s) on record\n", len(app.Transactions))
	return nil
}

func runAdd(ctx context.Context, app *client.App, args []string, stdout io.Writer) error {
	fs := newFlagSet("add")
	kind := fs.String("type", "expense", "income or expense")
	category := fs.String("category", "", "category name")
	amount := fs.String("amount", "", "positive amount, dot or comma decimals")
	date := fs.String("date", "", "date as YYYY-MM-DD (default today)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	d := client.Draft{Kind: *kind, Category: *category, Amount: *amount}
	if *date != "" {
		t, err := time.Parse(dateLayout, *date)
		if err != nil {
			return fmt.Errorf("invalid date %q, want YYYY-MM-DD", *date)
		}
		d.OccurredAt = t
	}

	t, err := app.Add(ctx, d)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Transaction Added! %s %s %s on %s\n",
		t.Kind, t.Category, core.FormatAmount(t.Amount), t.OccurredAt.Format(dateLayout))
	return nil
}

func runList(_ context.Context, app *client.App, _ []string, stdout io.Writer) error {
	return printTransactions(stdout, app.Transactions)
}

func runSummary(_ context.Context, app *client.App, _ []string, stdout io.Writer) error {
	renderSummary(stdout, app.Summary())
	return nil
}

func runUpdate(ctx context.Context, app *client.App, args []string, stdout io.Writer) error {
	fs := newFlagSet("update")
	id := fs.String("id", "", "transaction id")
	kind := fs.String("type", "", "income or expense")
	category := fs.String("category", "", "category name")
	amount := fs.String("amount", "", "positive amount")
	date := fs.String("date", "", "date as YYYY-MM-DD")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("update needs -id")
	}

	// Only flags given on the command line become part of the update.
	var upd client.TransactionUpdate
	var problem error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "type":
			k, err := core.ParseKind(*kind)
			if err != nil {
				problem = err
				return
			}
			upd.Kind = &k
		case "category":
			c := strings.TrimSpace(*category)
			upd.Category = &c
		case "amount":
			a, err := core.ParseAmount(*amount)
			if err != nil {
				problem = client.ErrInvalidAmount
				return
			}
			upd.Amount = &a
		case "date":
			t, err := time.Parse(dateLayout, *date)
			if err != nil {
				problem = fmt.Errorf("invalid date %q, want YYYY-MM-DD", *date)
				return
			}
			upd.OccurredAt = &t
		}
	})
	if problem != nil {
		return problem
	}

	if err := app.Update(ctx, *id, upd); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "Transaction Updated!")
	return nil
}

func runDelete(ctx context.Context, app *client.App, args []string, stdout io.Writer) error {
	fs := newFlagSet("delete")
	id := fs.String("id", "", "transaction id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("delete needs -id")
	}
	if err := app.Delete(ctx, *id); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "Transaction Deleted!")
	return nil
}

func printTransactions(w io.Writer, txs []core.Transaction) error {
	if len(txs) == 0 {
		_, err := fmt.Fprintln(w, "No transactions yet.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTYPE\tCATEGORY\tAMOUNT\tID")
	for _, t := range txs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			t.OccurredAt.Format(dateLayout), t.Kind, t.Category, core.FormatAmount(t.Amount), t.ID)
	}
	return tw.Flush()
}
