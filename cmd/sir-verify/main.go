// Command sir-verify is a developer tool for exercising the SIR verifier.
// It carries a set of built-in IR programs, valid and deliberately broken,
// and checks that verification accepts or rejects each one as expected.
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sable-lang/sable/internal/sir"
)

func main() {
	root := &cobra.Command{
		Use:   "sir-verify",
		Short: "Exercise the Sable IR verifier",
	}
	root.AddCommand(newSmokeCmd())
	root.AddCommand(newDumpCmd())
	root.AddCommand(newListCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newSmokeCmd() *cobra.Command {
	var manifestPath string
	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Run the built-in verification cases",
		RunE: func(cmd *cobra.Command, args []string) error {
			selected := builtinCases()
			if manifestPath != "" {
				manifest, err := loadManifest(manifestPath)
				if err != nil {
					return err
				}
				selected, err = manifest.apply(selected)
				if err != nil {
					return err
				}
			}
			return runSmoke(selected)
		},
	}
	cmd.Flags().StringVar(&manifestPath, "manifest", "", "YAML manifest selecting cases and expected complaints")
	return cmd
}

func runSmoke(cases []smokeCase) error {
	failed := 0
	for _, c := range cases {
		err := c.run()
		switch {
		case c.expect == "" && err == nil:
			log.Printf("ok   %s", c.name)
		case c.expect == "":
			log.Printf("FAIL %s: unexpected verification failure: %v", c.name, err)
			failed++
		case err == nil:
			log.Printf("FAIL %s: expected complaint %q, got none", c.name, c.expect)
			failed++
		case strings.Contains(err.Error(), c.expect):
			log.Printf("ok   %s (rejected: %s)", c.name, c.expect)
		default:
			log.Printf("FAIL %s: expected complaint %q, got: %v", c.name, c.expect, err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d cases failed", failed, len(cases))
	}
	log.Printf("all %d cases passed", len(cases))
	return nil
}

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump [case]",
		Short: "Print the IR of a built-in case",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "valid-module"
			if len(args) == 1 {
				name = args[0]
			}
			for _, c := range builtinCases() {
				if c.name == name {
					fmt.Print(sir.FormatModule(c.build()))
					return nil
				}
			}
			return fmt.Errorf("unknown case %q", name)
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the built-in cases",
		Run: func(cmd *cobra.Command, args []string) {
			for _, c := range builtinCases() {
				status := "valid"
				if c.expect != "" {
					status = "rejects: " + c.expect
				}
				fmt.Printf("%-28s %s\n", c.name, status)
			}
		},
	}
}
