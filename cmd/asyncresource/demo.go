package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/asyncresource/internal/demo"
	"github.com/aretw0/asyncresource/internal/presentation/graph"
	"github.com/aretw0/asyncresource/internal/presentation/tui"
	"github.com/aretw0/asyncresource/pkg/domain"
	"github.com/aretw0/asyncresource/pkg/resource"
	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the users scenario in the terminal",
	Long: `Loads a few pages of users, then adds one optimistically, rendering every
state transition of the resource as it happens.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		pages, _ := cmd.Flags().GetInt("pages")
		sessionID, _ := cmd.Flags().GetString("session")
		plain, _ := cmd.Flags().GetBool("plain")
		diagram, _ := cmd.Flags().GetBool("diagram")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.manager.GetOrCreate(ctx, sessionID)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if !plain {
			tui.PrintBanner(out)
		}

		subCtx, cancel := context.WithCancel(ctx)
		changes := res.Subscribe(subCtx)
		var (
			seen []domain.Change[demo.Users]
			wg   sync.WaitGroup
		)
		wg.Add(1)
		go func() {
			defer wg.Done()
			render := tui.NewRenderer()
			for change := range changes {
				seen = append(seen, change)
				printChange(out, res.Name(), change, render, plain)
			}
		}()

		runErr := runScenario(ctx, res, pages)
		cancel()
		wg.Wait()

		if diagram {
			fmt.Fprintln(out)
			fmt.Fprint(out, graph.GenerateMermaid(graph.OverlayFromChanges(seen)))
		}
		return runErr
	},
}

// runScenario mirrors a user paging through the list and then adding someone.
func runScenario(ctx context.Context, res *resource.Resource[demo.Users], pages int) error {
	for page := 1; page <= pages; page++ {
		if err := await(ctx, res, demo.ActionGet, page); err != nil {
			return err
		}
	}
	return await(ctx, res, demo.ActionAdd, demo.User{Name: "John", Location: "Sydney"})
}

func await(ctx context.Context, res *resource.Resource[demo.Users], action string, args any) error {
	p, err := res.Dispatch(ctx, action, args)
	if err != nil {
		return err
	}
	if _, err := p.Await(ctx); err != nil {
		return fmt.Errorf("%s failed: %w", action, err)
	}
	return nil
}

func printChange(w io.Writer, name string, change domain.Change[demo.Users], render func(string) (string, error), plain bool) {
	snap, err := domain.EncodeSnapshot(change.To, change.Version)
	if err != nil {
		fmt.Fprintf(w, "v%d: %v\n", change.Version, err)
		return
	}
	if plain {
		fmt.Fprintf(w, "v%d %s -> %s (%d users)\n", change.Version, change.From.Status, change.To.Status, len(change.To.Data))
		return
	}

	fmt.Fprintf(w, "%s %s\n", tui.StatusBadge(change.From.Status), tui.StatusBadge(change.To.Status))
	rendered, err := render(tui.SnapshotMarkdown(name, snap))
	if err != nil {
		fmt.Fprintln(w, tui.SnapshotMarkdown(name, snap))
		return
	}
	fmt.Fprint(w, rendered)
}

func init() {
	rootCmd.AddCommand(demoCmd)
	demoCmd.Flags().Int("pages", 2, "Number of pages to load before adding a user")
	demoCmd.Flags().String("session", "demo", "Session ID of the resource")
	demoCmd.Flags().Bool("plain", false, "Print one line per transition instead of rendered markdown")
	demoCmd.Flags().Bool("diagram", false, "Print a Mermaid diagram of the visited states at the end")
}
