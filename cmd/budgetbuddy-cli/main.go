// Command budgetbuddy-cli is a terminal client for the budgetbuddy API.
//
// Usage:
//
//	budgetbuddy-cli [-api URL] [-profile PATH] <command> [flags]
//
// Commands: register, add, list, summary, update, delete.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"budgetbuddy/internal/client"
	applog "budgetbuddy/internal/log"
)

const defaultAPIURL = "http://localhost:5000"

type command struct {
	name  string
	usage string
	run   func(ctx context.Context, app *client.App, args []string, stdout io.Writer) error
}

var commands = []command{
	{name: "register", usage: "register -name NAME -email EMAIL", run: runRegister},
	{name: "add", usage: "add -type income|expense -category CAT -amount N [-date YYYY-MM-DD]", run: runAdd},
	{name: "list", usage: "list", run: runList},
	{name: "summary", usage: "summary", run: runSummary},
	{name: "update", usage: "update -id ID [-type T] [-category C] [-amount N] [-date D]", run: runUpdate},
	{name: "delete", usage: "delete -id ID", run: runDelete},
}

func main() {
	_ = godotenv.Load()
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("budgetbuddy-cli", flag.ContinueOnError)
	fs.SetOutput(stderr)
	apiURL := fs.String("api", envOr("BUDGETBUDDY_API_URL", defaultAPIURL), "API base URL")
	profilePath := fs.String("profile", "", "local profile file (default: user config dir)")
	verbose := fs.Bool("v", false, "log diagnostics at debug level")
	fs.Usage = func() { printUsage(stderr) }
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		printUsage(stderr)
		return 2
	}

	cmd, ok := lookup(fs.Arg(0))
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", fs.Arg(0))
		printUsage(stderr)
		return 2
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := applog.New(applog.Config{Level: level, Output: stderr, Component: applog.ComponentClient})

	if *profilePath == "" {
		p, err := client.DefaultProfilePath()
		if err != nil {
			fmt.Fprintln(stderr, "error:", err)
			return 1
		}
		*profilePath = p
	}

	app := client.NewApp(client.NewAPI(*apiURL, nil), client.NewProfileStore(*profilePath), logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if cmd.name != "register" {
		if err := app.Load(ctx); err != nil {
			fmt.Fprintln(stderr, "error:", err)
			return 1
		}
		if app.User == nil {
			fmt.Fprintln(stderr, "no registered user; run: budgetbuddy-cli register -name NAME -email EMAIL")
			return 1
		}
	}

	if err := cmd.run(ctx, app, fs.Args()[1:], stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 2
		}
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: budgetbuddy-cli [-api URL] [-profile PATH] [-v] <command> [flags]")
	fmt.Fprintln(w, "\ncommands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %s\n", c.usage)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
