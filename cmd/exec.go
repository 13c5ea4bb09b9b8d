package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var execOn string

var execCmd = &cobra.Command{
	Use:   "exec [sql]",
	Short: "Run a raw SQL statement against the source or target",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		sqlText := strings.Join(args, " ")

		source, target, err := openPair()
		if err != nil {
			return err
		}
		defer source.Close()
		defer target.Close()

		session := target
		switch execOn {
		case "target":
		case "source":
			session = source
		default:
			return fmt.Errorf("unknown endpoint %q (want source or target)", execOn)
		}

		if err := session.ExecuteCommand(ctx, sqlText); err != nil {
			return err
		}
		fmt.Printf("✓ Executed on %s.\n", execOn)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(execCmd)

	execCmd.Flags().StringVar(&execOn, "on", "target", "endpoint to run against: source or target")
}
