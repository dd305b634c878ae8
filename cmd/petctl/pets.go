package main

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"
)

type petView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	TypeLabel string    `json:"typeLabel"`
	Breed     string    `json:"breed"`
	Sex       string    `json:"sex"`
	BirthDate time.Time `json:"birthDate"`
	Age       string    `json:"age"`
	Weight    float64   `json:"weight"`
	Notes     string    `json:"notes"`
}

type overviewView struct {
	Pet     petView `json:"pet"`
	Summary struct {
		VaccinationsOverdue   int `json:"vaccinationsOverdue"`
		VaccinationsDueSoon   int `json:"vaccinationsDueSoon"`
		VaccinationsCompleted int `json:"vaccinationsCompleted"`
		MedicationsActive     int `json:"medicationsActive"`
		MedicationsUpcoming   int `json:"medicationsUpcoming"`
		MedicationsCompleted  int `json:"medicationsCompleted"`
		AppointmentsUpcoming  int `json:"appointmentsUpcoming"`
		AppointmentsPast      int `json:"appointmentsPast"`
	} `json:"summary"`
}

type cascadeView struct {
	Pet          petView `json:"pet"`
	Vaccinations int     `json:"vaccinations"`
	Medications  int     `json:"medications"`
	Appointments int     `json:"appointments"`
}

func newPetsCmd(a *app) *cobra.Command {
	petsCmd := &cobra.Command{Use: "pets", Short: "Pet operations"}

	// list
	petsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List pets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var list []petView
			if err := a.get(cmd.Context(), "/pets", &list); err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout(), "ID", "NAME", "TYPE", "BREED", "AGE", "WEIGHT")
			for _, p := range list {
				tw.row(p.ID, p.Name, p.TypeLabel, p.Breed, p.Age, fmt.Sprintf("%.1f", p.Weight))
			}
			return tw.flush()
		},
	})

	// show
	petsCmd.AddCommand(&cobra.Command{
		Use:   "show PET_ID",
		Short: "Show a pet with its status summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var ov overviewView
			if err := a.get(cmd.Context(), "/pets/"+url.PathEscape(args[0])+"/overview", &ov); err != nil {
				return err
			}
			p, s := ov.Pet, ov.Summary
			tw := newTable(cmd.OutOrStdout())
			tw.row("Name:", p.Name)
			tw.row("Type:", p.TypeLabel)
			tw.row("Breed:", p.Breed)
			tw.row("Born:", p.BirthDate.Format("2006-01-02")+" ("+p.Age+")")
			tw.row("Weight:", fmt.Sprintf("%.1f", p.Weight))
			tw.row("Vaccinations:", fmt.Sprintf("%d overdue, %d due soon, %d completed", s.VaccinationsOverdue, s.VaccinationsDueSoon, s.VaccinationsCompleted))
			tw.row("Medications:", fmt.Sprintf("%d active, %d upcoming, %d completed", s.MedicationsActive, s.MedicationsUpcoming, s.MedicationsCompleted))
			tw.row("Appointments:", fmt.Sprintf("%d upcoming, %d past", s.AppointmentsUpcoming, s.AppointmentsPast))
			return tw.flush()
		},
	})

	// delete
	petsCmd.AddCommand(&cobra.Command{
		Use:   "delete PET_ID",
		Short: "Delete a pet and all its records (undo with 'petctl undo pet')",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var res cascadeView
			if err := a.delete(cmd.Context(), "/pets/"+url.PathEscape(args[0]), &res); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "deleted %s with %d vaccinations, %d medications, %d appointments\n",
				res.Pet.Name, res.Vaccinations, res.Medications, res.Appointments)
			return err
		},
	})

	return petsCmd
}
