package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/daniloc96/team-roles/internal/models"
	"github.com/daniloc96/team-roles/internal/rotate"
)

var (
	flagManager string
	flagHolders = map[models.Role]*string{}
)

var membersCmd = &cobra.Command{
	Use:   "members [usergroup]",
	Short: "List the usergroup members in rotation order",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, engine, err := setup(cmd)
		if err != nil {
			return err
		}
		usergroup := ""
		if len(args) == 1 {
			usergroup = args[0]
		}
		members, err := engine.ListMembers(cmd.Context(), usergroup)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for i, m := range members {
			fmt.Fprintf(out, "%d. %s (%s)\n", i+1, m.Name, m.ID)
		}
		return nil
	},
}

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "Manage the role snapshot",
}

var rolesInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a new role snapshot",
	Long: `Write a new role snapshot from member names.

Overlapping roles take the current and the incoming member separated by a
comma, e.g. --support-steward "Alice,Bob".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := initOptions(flagManager, flagHolders)
		if err != nil {
			return err
		}
		_, engine, err := setup(cmd)
		if err != nil {
			return err
		}
		state, err := engine.InitRoles(cmd.Context(), opts)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, role := range models.Roles {
			a, ok := state.Assignment(role)
			if !ok {
				continue
			}
			if o, overlapping := a.(models.Overlapping); overlapping {
				fmt.Fprintf(out, "%s: %s, incoming %s\n", role.Title(), o.Current.Name, o.Incoming.Name)
				continue
			}
			fmt.Fprintf(out, "%s: %s\n", role.Title(), a.Cursor().Name)
		}
		return nil
	},
}

func initOptions(manager string, holders map[models.Role]*string) (rotate.InitOptions, error) {
	opts := rotate.InitOptions{Manager: manager, Holders: map[models.Role][]string{}}
	for role, value := range holders {
		if value == nil || strings.TrimSpace(*value) == "" {
			continue
		}
		var names []string
		for _, name := range strings.Split(*value, ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
		opts.Holders[role] = names
	}
	if len(opts.Holders) == 0 {
		return rotate.InitOptions{}, fmt.Errorf("give at least one of --%s", strings.Join(models.RoleNames(), ", --"))
	}
	return opts, nil
}

func init() {
	rolesInitCmd.Flags().StringVar(&flagManager, "manager", "", "Standup manager added to every standup")
	for _, role := range models.Roles {
		usage := "Holder of the " + role.Title() + " role"
		if role.Kind() == models.KindOverlapping {
			usage = "Current and incoming " + role.Title() + ", comma separated"
		}
		flagHolders[role] = rolesInitCmd.Flags().String(string(role), "", usage)
	}

	rolesCmd.AddCommand(rolesInitCmd)
	rootCmd.AddCommand(membersCmd, rolesCmd)
}
