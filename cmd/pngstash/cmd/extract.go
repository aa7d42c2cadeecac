package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <file>",
		Short: "Extract the hidden message (if present) from a PNG file",
		Args:  cobra.ExactArgs(1),
		RunE:  runExtract,
	}
}

func runExtract(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime(cmd)
	if err != nil {
		return err
	}

	f, err := rt.open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	message, err := f.Extract()
	if err != nil {
		return err
	}

	rt.logger.DebugContext(rt.ctx, "Extracted hidden message", "path", args[0], "bytes", len(message))

	out := cmd.OutOrStdout()
	if isTerminal(out) {
		fmt.Fprintf(out, "Secret message: %s\n", message)
	} else {
		fmt.Fprintln(out, message)
	}
	return nil
}
