package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/heysubinoy/pyazkv/internal/store"
	"github.com/heysubinoy/pyazkv/pkg/kv"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Read a key from a remote node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRemote(cmd, kv.NewProgram(kv.Get[string](args[0])))
	},
}

var putCmd = &cobra.Command{
	Use:   "put <key> <value>",
	Short: "Write a key on a remote node",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRemote(cmd, kv.NewProgram(kv.Put(args[0], args[1])))
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <key>",
	Short: "Delete a key on a remote node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRemote(cmd, kv.NewProgram(kv.Delete[string](args[0])))
	},
}

var runCmd = &cobra.Command{
	Use:   "run <op> <key> [value] ...",
	Short: "Run a program of commands against a remote node",
	Long: `Runs a program against a remote node, one command after the other.

  pyazkv run put wild-cats 2 put tame-cats 5 get wild-cats delete tame-cats`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		program, err := parseProgram(args)
		if err != nil {
			return err
		}
		return runRemote(cmd, program)
	},
}

func init() {
	for _, c := range []*cobra.Command{getCmd, putCmd, deleteCmd, runCmd} {
		c.Flags().StringP("addr", "a", "localhost:9090", "gRPC address of the node")
		c.Flags().DurationP("timeout", "t", 5*time.Second, "Per-command timeout")
		c.Flags().Bool("continue", false, "Keep going after a failed command")
		rootCmd.AddCommand(c)
	}
}

// parseProgram reads "put <key> <value>", "get <key>" and "delete <key>"
// triples and pairs from args, in order.
func parseProgram(args []string) (kv.Program[string], error) {
	program := kv.NewProgram[string]()
	for i := 0; i < len(args); {
		op, err := kv.ParseOp(args[i])
		if err != nil {
			return program, err
		}
		need := 2
		if op == kv.OpPut {
			need = 3
		}
		if i+need > len(args) {
			return program, fmt.Errorf("%s at argument %d: expected %d arguments", op, i, need-1)
		}

		c := kv.Command[string]{Op: op, Key: args[i+1]}
		if op == kv.OpPut {
			c.Value = args[i+2]
		}
		program = program.Append(c)
		i += need
	}
	return program, nil
}

func runRemote(cmd *cobra.Command, program kv.Program[string]) error {
	addr, _ := cmd.Flags().GetString("addr")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	keepGoing, _ := cmd.Flags().GetBool("continue")

	// Use passthrough resolver for direct address connection
	conn, err := grpc.NewClient("passthrough:///"+addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer conn.Close()

	out := cmd.OutOrStdout()
	exec := &kv.Executor[string]{
		Logger: newLogger(cmd, "client"),
		Observer: func(_ int, c kv.Command[string]) {
			fmt.Fprintln(out, c.String())
		},
	}
	if keepGoing {
		exec.Policy = kv.ContinueOnError
	}

	results, err := exec.Run(cmd.Context(), program, store.NewRemoteStore(conn, timeout))
	for _, res := range results {
		fmt.Fprintln(out, formatResult(res))
	}
	return err
}

func formatResult(res kv.Result[string]) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: ", res.Op, res.Key)
	switch {
	case res.Err != nil:
		fmt.Fprintf(&b, "error: %v", res.Err)
	case res.Op == kv.OpGet:
		b.WriteString(formatOption(res, true))
	default:
		b.WriteString("ok")
	}
	return b.String()
}
