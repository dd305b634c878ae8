package main

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"pet-health-tracker/internal/domain/records"
)

// recordView junta los campos de los tres tipos; cada listado usa los suyos.
type recordView struct {
	ID          string `json:"id"`
	StatusLabel string `json:"statusLabel"`

	Name             string     `json:"name"`
	DueDate          time.Time  `json:"dueDate"`
	AdministeredDate *time.Time `json:"administeredDate"`

	Dosage    string    `json:"dosage"`
	Frequency string    `json:"frequency"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`

	VetName string    `json:"vetName"`
	Date    time.Time `json:"date"`
	Reason  string    `json:"reason"`
}

const dateLayout = "2006-01-02"

var recordColumns = map[string][]string{
	"vaccinations": {"ID", "NAME", "DUE", "ADMINISTERED", "STATUS"},
	"medications":  {"ID", "NAME", "DOSAGE", "FREQUENCY", "FROM", "TO", "STATUS"},
	"appointments": {"ID", "DATE", "VET", "REASON", "STATUS"},
}

// suggestions son los valores que ofrece el formulario; la API acepta texto libre.
var suggestions = map[string]struct {
	field  string
	values []string
}{
	"medications":  {"frequency", records.Frequencies},
	"appointments": {"reason", records.AppointmentReasons},
}

func recordRow(kind string, r recordView) []string {
	switch kind {
	case "vaccinations":
		administered := "-"
		if r.AdministeredDate != nil {
			administered = r.AdministeredDate.Format(dateLayout)
		}
		return []string{r.ID, r.Name, r.DueDate.Format(dateLayout), administered, r.StatusLabel}
	case "medications":
		return []string{r.ID, r.Name, r.Dosage, r.Frequency, r.StartDate.Format(dateLayout), r.EndDate.Format(dateLayout), r.StatusLabel}
	default:
		return []string{r.ID, r.Date.Format("2006-01-02 15:04"), r.VetName, r.Reason, r.StatusLabel}
	}
}

func newRecordsCmd(a *app, kind, short string) *cobra.Command {
	cmd := &cobra.Command{Use: kind, Short: short}
	sg, hasSuggestions := suggestions[kind]
	if hasSuggestions {
		cmd.Long = fmt.Sprintf("%s.\n\nSuggested %s values: %s.", short, sg.field, strings.Join(sg.values, ", "))
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list PET_ID",
		Short: "List " + kind + " of a pet in display order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var list []recordView
			if err := a.get(cmd.Context(), "/pets/"+url.PathEscape(args[0])+"/"+kind, &list); err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout(), recordColumns[kind]...)
			for _, r := range list {
				tw.row(recordRow(kind, r)...)
			}
			return tw.flush()
		},
	})

	if hasSuggestions {
		cmd.AddCommand(&cobra.Command{
			Use:   "suggestions",
			Short: "Print suggested " + sg.field + " values",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				for _, v := range sg.values {
					if _, err := fmt.Fprintln(cmd.OutOrStdout(), v); err != nil {
						return err
					}
				}
				return nil
			},
		})
	}

	return cmd
}
