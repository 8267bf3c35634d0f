package cmd

import (
	"github.com/spf13/cobra"
)

var pairCmd = &cobra.Command{
	Use:   "pair",
	Short: "Pair with a TV",
	Long: `Pair with a TV. Without --key the TV is asked to show its pairing key
on screen; run again with --key to complete the pairing and verify the
connection.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := openTV()
		if err != nil {
			return err
		}
		defer client.Close()

		if !client.Paired() {
			cmd.Println("The TV is now showing its pairing key.")
			cmd.Println("Run again with --key <key> to complete the pairing.")
			return nil
		}

		cmd.Printf("Paired with TV at %s (session %s)\n", client.Host(), client.SessionID())
		return nil
	},
}

func init() {
	addTVFlags(pairCmd, false)
	rootCmd.AddCommand(pairCmd)
}
