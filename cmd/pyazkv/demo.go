package main

import (
	"context"
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"
	"github.com/heysubinoy/pyazkv/internal/store"
	"github.com/heysubinoy/pyazkv/pkg/kv"
	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the cats program against a fresh in-memory store",
	Long: `Runs put(wild-cats, 2), put(tame-cats, 5), get(wild-cats), delete(tame-cats)
against an in-memory store, printing each command before it is applied and
then the value read by the get.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd, "demo")
		return runDemo(cmd.Context(), cmd.OutOrStdout(), store.NewMemStore[int](), logger)
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

func catsProgram() kv.Program[int] {
	return kv.NewProgram[int]().
		Put("wild-cats", 2).
		Put("tame-cats", 5).
		Get("wild-cats").
		Delete("tame-cats")
}

func runDemo(ctx context.Context, out io.Writer, s kv.Store[int], logger hclog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	exec := &kv.Executor[int]{
		Logger: logger,
		Observer: func(_ int, c kv.Command[int]) {
			fmt.Fprintln(out, c.String())
		},
	}

	results, err := exec.Run(ctx, catsProgram(), s)
	if err != nil {
		return err
	}

	res, ok := lastGet(results)
	fmt.Fprintln(out, formatOption(res, ok))
	return nil
}

// lastGet returns the result of the last get in results.
func lastGet[V any](results []kv.Result[V]) (kv.Result[V], bool) {
	for i := len(results) - 1; i >= 0; i-- {
		if results[i].Op == kv.OpGet {
			return results[i], true
		}
	}
	return kv.Result[V]{}, false
}

func formatOption[V any](res kv.Result[V], ok bool) string {
	if !ok || !res.Found {
		return "None"
	}
	return fmt.Sprintf("Some(%v)", res.Value)
}
