package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/HendryAvila/storybook/internal/agent"
	"github.com/HendryAvila/storybook/internal/journal"
	"github.com/HendryAvila/storybook/internal/library"
)

// printEvent renders one agent event for the terminal. Text goes to
// stdout; everything else is commentary on stderr.
func printEvent(ev agent.Event) error {
	if jsonOutput {
		return printJSON(ev)
	}
	switch ev.Type {
	case agent.EventText:
		fmt.Println(ev.Content)
	case agent.EventToolUse:
		fmt.Fprintf(os.Stderr, "  ⚙ %s\n", agent.ShortToolName(ev.Tool))
	case agent.EventProgress:
		fmt.Fprintf(os.Stderr, "… %s\n", ev.Message)
	case agent.EventError:
		msg := ev.Message
		if ev.Detail != "" {
			msg += ": " + ev.Detail
		}
		fmt.Fprintf(os.Stderr, "✗ %s\n", msg)
	case agent.EventComplete:
		if ev.Turns > 0 || ev.Cost > 0 {
			fmt.Fprintf(os.Stderr, "✓ done in %d turns ($%.4f)\n", ev.Turns, ev.Cost)
		}
	}
	return nil
}

var chatCmd = &cobra.Command{
	Use:   "chat <project>",
	Short: "Talk with the AI editor about a manuscript",
	Long: `Starts an interactive chat. Each line you type is one message; the editor
can read the manuscript and track characters and plot events while it
answers. End the session with Ctrl-D or /quit.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		return withLibrary(func(lib *library.Library) error {
			p, err := lib.Get(args[0])
			if err != nil {
				return err
			}
			opts, err := agentOptions(p.ID)
			if err != nil {
				return err
			}
			session, err := lib.StartChat(newRunner(), opts, p)
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stderr, "Chatting about %s. Ctrl-D or /quit to leave.\n", p.Name)
			sc := bufio.NewScanner(os.Stdin)
			for {
				fmt.Fprint(os.Stderr, "> ")
				if !sc.Scan() {
					fmt.Fprintln(os.Stderr)
					return sc.Err()
				}
				line := strings.TrimSpace(sc.Text())
				switch line {
				case "":
					continue
				case "/quit", "/exit":
					return nil
				}
				// Agent failures arrive as error events; only
				// cancellation ends the session.
				if err := session.Send(ctx, line, printEvent); err != nil {
					if errors.Is(err, context.Canceled) {
						return nil
					}
					return err
				}
			}
		})
	},
}

var reviewCmd = &cobra.Command{
	Use:   "review <project>",
	Short: "Run a full editorial review and save it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		focus, _ := cmd.Flags().GetStringSlice("focus")
		ctx, stop := signalContext()
		defer stop()

		return withLibrary(func(lib *library.Library) error {
			p, err := lib.Get(args[0])
			if err != nil {
				return err
			}
			opts, err := agentOptions(p.ID)
			if err != nil {
				return err
			}
			// Stream commentary only; the review text is printed once
			// at the end.
			emit := func(ev agent.Event) error {
				if ev.Type == agent.EventText || ev.Type == agent.EventComplete {
					return nil
				}
				return printEvent(ev)
			}
			res, err := lib.Review(ctx, newRunner(), opts, p, focus, emit)
			if err != nil {
				if errors.Is(err, library.ErrReviewFailed) && res.Failure != nil {
					return fmt.Errorf("review failed: %s", res.Failure.Message)
				}
				return err
			}
			if jsonOutput {
				return printJSON(res)
			}
			fmt.Println(res.Markdown)
			fmt.Fprintf(os.Stderr, "✓ review saved (%d turns, $%.4f)\n", res.Turns, res.Cost)
			return nil
		})
	},
}

var askCmd = &cobra.Command{
	Use:   "ask <project> <question...>",
	Short: "Ask the editor one question about the manuscript",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args[1:], " ")
		ctx, stop := signalContext()
		defer stop()

		return withLibrary(func(lib *library.Library) error {
			p, err := lib.Get(args[0])
			if err != nil {
				return err
			}
			opts, err := agentOptions(p.ID)
			if err != nil {
				return err
			}
			editor, err := agent.NewEditor(newRunner(), lib.Store(), opts)
			if err != nil {
				return err
			}
			events, err := editor.Ask(ctx, p, question)
			if err != nil {
				return err
			}

			finish := lib.TrackSession(p, journal.KindFeedback)
			var c agent.Collector
			for ev := range events {
				c.Add(ev)
				_ = printEvent(ev)
			}
			res := c.Result()
			out := journal.Outcome{Status: journal.StatusComplete, CostUSD: res.Cost, Turns: res.Turns, AgentSessionID: res.SessionID}
			switch {
			case ctx.Err() != nil:
				out.Status = journal.StatusCancelled
			case !res.OK():
				out.Status = journal.StatusFailed
			}
			finish(out)
			if out.Status == journal.StatusFailed {
				return fmt.Errorf("feedback failed: %s", res.Failure.Message)
			}
			return nil
		})
	},
}

var reviewsCmd = &cobra.Command{
	Use:   "reviews <project>",
	Short: "List saved reviews, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		latest, _ := cmd.Flags().GetBool("latest")
		return withLibrary(func(lib *library.Library) error {
			reviews, err := lib.Reviews(args[0], limit)
			if err != nil {
				return err
			}
			if latest {
				if len(reviews) == 0 {
					return fmt.Errorf("%w: no review saved yet", library.ErrNoEntry)
				}
				reviews = reviews[:1]
				if !jsonOutput {
					fmt.Println(reviews[0].Content)
					return nil
				}
			}
			if jsonOutput {
				return printJSON(reviews)
			}
			if len(reviews) == 0 {
				fmt.Println("No reviews yet. Run `storybook review <project>`.")
				return nil
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDATE\tFOCUS\tCOST")
			for _, r := range reviews {
				fmt.Fprintf(tw, "%d\t%s\t%s\t$%.4f\n", r.ID,
					r.CreatedAt.Local().Format("2006-01-02 15:04"),
					orDash(strings.Join(r.FocusAreas, ", ")), r.CostUSD)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if stats, err := lib.Stats(args[0]); err == nil && stats.Sessions > 0 {
				fmt.Printf("\n%d agent sessions, %d turns, $%.4f total\n", stats.Sessions, stats.TotalTurns, stats.TotalCostUSD)
			}
			return nil
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{chatCmd, reviewCmd, askCmd} {
		c.Flags().String("model", "", "Agent model (default from config)")
		c.Flags().Int("max-turns", 0, "Maximum agent turns (0 = agent default)")
	}
	reviewCmd.Flags().StringSlice("focus", nil, "Focus areas, e.g. pacing,dialogue")
	reviewsCmd.Flags().Int("limit", 20, "Maximum reviews to list")
	reviewsCmd.Flags().Bool("latest", false, "Print only the latest review text")

	rootCmd.AddCommand(chatCmd, reviewCmd, askCmd, reviewsCmd)
}
