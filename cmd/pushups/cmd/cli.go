package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/templui/pushups/internal/app"
	"github.com/templui/pushups/internal/migrate"
)

// Opener builds the app a command runs against
type Opener func(ctx context.Context, notifier migrate.Notifier) (*app.App, error)

// CLI holds the app shared by all subcommands of one invocation
type CLI struct {
	open    Opener
	app     *app.App
	printer *message.Printer
}

func New(open Opener) *CLI {
	return &CLI{
		open:    open,
		printer: message.NewPrinter(language.English),
	}
}

// Command returns the root command
func (c *CLI) Command() *cobra.Command {
	root := &cobra.Command{
		Use:           "pushups",
		Short:         "Track your daily push-ups",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd.Context(), terminalNotifier{w: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			c.app = a
			return nil
		},
	}

	root.AddCommand(c.addCmd())
	root.AddCommand(c.todayCmd())
	root.AddCommand(c.totalCmd())
	root.AddCommand(c.historyCmd())
	root.AddCommand(c.statsCmd())
	root.AddCommand(c.settingsCmd())
	root.AddCommand(c.onboardCmd())
	root.AddCommand(c.clearCmd())
	root.AddCommand(c.remindCmd())
	root.AddCommand(c.dbCmd())

	return root
}

// Close flushes pending writes. A failed write is returned after it was
// already logged and reported by the store.
func (c *CLI) Close(ctx context.Context) error {
	if c.app == nil {
		return nil
	}
	err := c.app.Close(ctx)
	c.app = nil
	return err
}

// flush makes a command fail when its change could not be saved
func (c *CLI) flush(cmd *cobra.Command) error {
	err := c.app.Store.Flush(cmd.Context())
	if err != nil {
		return fmt.Errorf("saved in memory but not on disk: %w", err)
	}
	return nil
}

// terminalNotifier shows non-fatal notices on stderr
type terminalNotifier struct {
	w io.Writer
}

func (n terminalNotifier) Notify(title, message string) {
	fmt.Fprintf(n.w, "%s %s\n", color.New(color.FgYellow, color.Bold).Sprint(title+":"), message)
}

var (
	good = color.New(color.FgGreen).SprintFunc()
	dim  = color.New(color.Faint).SprintFunc()
)

func progress(p *message.Printer, total, goal int) string {
	line := p.Sprintf("%d / %d", total, goal)
	if total > 0 && total >= goal {
		return good(line + " ✓")
	}
	return line
}

var errNeedsConfirmation = errors.New("refusing to clear data without --yes")
