package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/djvolz/oci-genai-chatbot/version"
)

var versionJSON bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, _ []string) error {
		info := version.Get()
		if versionJSON {
			s, err := info.ToJSON()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), info.Text())
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "print as JSON")
}
