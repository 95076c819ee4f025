package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/daniloc96/team-roles/internal/models"
)

var roleArgs = "one of " + strings.Join(models.RoleNames(), ", ")

var rotateCmd = &cobra.Command{
	Use:   "rotate <role>",
	Short: "Hand a role to its next holder and save the snapshot",
	Long:  "Hand a role to its next holder and save the snapshot. The role is " + roleArgs + ".",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, models.ActionRotate, args, nil)
	},
}

var standupCmd = &cobra.Command{
	Use:   "standup <role>",
	Short: "Point the role's Geekbot standup at the current holder",
	Long:  "Point the role's Geekbot standup at the current holder. The role is " + roleArgs + ".",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, models.ActionStandup, args, nil)
	},
}

func init() {
	rootCmd.AddCommand(rotateCmd, standupCmd)
}
