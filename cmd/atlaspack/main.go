// Command atlaspack packs a directory of PNG sprites into a single
// texture atlas plus a JSON metadata sidecar.
//
// Usage:
//
//	atlaspack pack <input-dir> <output-dir> <atlas-name> [flags]
//	atlaspack info <input-dir>
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var log = logrus.New()

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "atlaspack",
		Short:         "Pack a directory of PNG sprites into a texture atlas",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var verbose bool
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	cobra.OnInitialize(func() {
		if verbose {
			log.SetLevel(logrus.DebugLevel)
		}
	})

	root.AddCommand(newPackCmd(), newInfoCmd())

	root.RunE = func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	}

	return root
}

// exitErr prints err to stderr as "atlaspack <cmd>: <err>" and returns it
// unchanged so cobra can set a nonzero exit status.
func exitErr(cmdName string, err error) error {
	fmt.Fprintf(os.Stderr, "atlaspack %s: %v\n", cmdName, err)
	return err
}
