package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wippyai/cortex-bridge/abi"
)

// NewHeaderCommand creates the header command.
func NewHeaderCommand(_ *RootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "header",
		Short: "Print the C header for the shared library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeTo(cmd, output, func(w io.Writer) error {
				return abi.WriteCHeader(w, abi.NewSchema())
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

// NewWITCommand creates the wit command.
func NewWITCommand(_ *RootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "wit",
		Short: "Print the WIT interface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeTo(cmd, output, func(w io.Writer) error {
				return abi.WriteWIT(w, abi.NewSchema())
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

// writeTo runs render against stdout, or against path when set.
func writeTo(cmd *cobra.Command, path string, render func(io.Writer) error) (err error) {
	if path == "" {
		return render(cmd.OutOrStdout())
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return render(f)
}
