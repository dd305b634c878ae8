package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUndoCmd(a *app) *cobra.Command {
	undoCmd := &cobra.Command{Use: "undo", Short: "Undo the last delete"}

	undoCmd.AddCommand(&cobra.Command{
		Use:   "pet",
		Short: "Restore the last deleted pet with its records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var res struct {
				Restored bool `json:"restored"`
				cascadeView
			}
			if err := a.post(cmd.Context(), "/undo/pet", &res); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !res.Restored {
				_, err := fmt.Fprintf(out, "%s was already restored, nothing changed\n", res.Pet.Name)
				return err
			}
			_, err := fmt.Fprintf(out, "restored %s with %d vaccinations, %d medications, %d appointments\n",
				res.Pet.Name, res.Vaccinations, res.Medications, res.Appointments)
			return err
		},
	})

	for _, kind := range []string{"vaccination", "medication", "appointment"} {
		undoCmd.AddCommand(&cobra.Command{
			Use:   kind,
			Short: "Restore the last deleted " + kind,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				var res map[string]any
				if err := a.post(cmd.Context(), "/undo/"+kind, &res); err != nil {
					return err
				}
				restored, _ := res["restored"].(bool)
				msg := kind + " restored"
				if !restored {
					msg = kind + " was already present, nothing changed"
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), msg)
				return err
			},
		})
	}

	return undoCmd
}

func newSampleDataCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sample-data",
		Short: "Replace all data with a sample set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var c struct {
				Pets         int `json:"pets"`
				Vaccinations int `json:"vaccinations"`
				Medications  int `json:"medications"`
				Appointments int `json:"appointments"`
			}
			if err := a.post(cmd.Context(), "/sample-data", &c); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "loaded %d pets, %d vaccinations, %d medications, %d appointments\n",
				c.Pets, c.Vaccinations, c.Medications, c.Appointments)
			return err
		},
	}
}
