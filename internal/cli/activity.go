package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newActivityCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Manage activity instances",
	}
	cmd.AddCommand(newActivityCreateCommand(a))
	cmd.AddCommand(newActivityShowCommand(a))
	cmd.AddCommand(newActivityDeleteCommand(a))
	return cmd
}

func newActivityCreateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create an activity and print its id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			activity, err := a.activities.Create(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\n", activity.ID)
			return nil
		},
	}
}

func newActivityShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <activity-id>",
		Short: "Show an activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseArgID(args[0])
			if err != nil {
				return err
			}
			if err := a.open(); err != nil {
				return err
			}
			activity, err := a.activities.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "id:       %d\nname:     %s\ncreated:  %s\n",
				activity.ID, activity.Name, activity.CreatedAt.Format("2006-01-02 15:04"))
			return nil
		},
	}
}

func newActivityDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <activity-id>",
		Short: "Delete an activity with all of its categories and snips",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseArgID(args[0])
			if err != nil {
				return err
			}
			if err := a.open(); err != nil {
				return err
			}
			if err := a.activities.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted activity %d\n", id)
			return nil
		},
	}
}

func parseArgID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
