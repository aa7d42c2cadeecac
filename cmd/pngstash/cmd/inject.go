package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newInjectCmd() *cobra.Command {
	injectCmd := &cobra.Command{
		Use:     "inject <source> <destination>",
		Short:   "Inject a hidden text message into a copy of a PNG file",
		Long:    `Copy the source PNG to the destination, adding a private chunk that carries the message right before IEND. The source is never modified.`,
		Example: `pngstash inject in.png out.png -m "meet at noon"`,
		Args:    cobra.ExactArgs(2),
		RunE:    runInject,
	}

	injectCmd.Flags().StringP("message", "m", "", "the message to hide (default from config)")
	injectCmd.Flags().Bool("force", false, "overwrite the destination if it exists")

	return injectCmd
}

func runInject(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime(cmd)
	if err != nil {
		return err
	}

	src, dst := args[0], args[1]

	message := rt.cfg.Inject.DefaultMessage
	if cmd.Flags().Changed("message") {
		message, _ = cmd.Flags().GetString("message")
	}

	force, _ := cmd.Flags().GetBool("force")
	if !force && !rt.cfg.Inject.Overwrite {
		exists, err := afero.Exists(rt.fs, dst)
		if err != nil {
			return fmt.Errorf("failed to check destination: %w", err)
		}
		if exists {
			return fmt.Errorf("destination %s already exists (use --force to overwrite)", dst)
		}
	}

	f, err := rt.open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Inject(dst, message); err != nil {
		return err
	}

	rt.logger.InfoContext(rt.ctx, "Injected hidden message",
		"source", src,
		"destination", dst,
		"bytes", len(message))

	fmt.Fprintf(cmd.OutOrStdout(), "Injected %d byte(s) into %s\n", len(message), dst)
	return nil
}
