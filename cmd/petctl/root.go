package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pet-health-tracker/internal/platform/httpclient"
)

// app es el estado compartido por los subcomandos.
type app struct {
	api     string
	timeout time.Duration
	client  *httpclient.Client
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "petctl",
		Short:         "CLI client for the pet health tracker REST API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := httpclient.NewWithBaseURL(a.api, a.timeout)
			if err != nil {
				return err
			}
			errOut := cmd.ErrOrStderr()
			c.OnWarning = func(w string) { fmt.Fprintln(errOut, "warning:", w) }
			a.client = c
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&a.api, "api", "a", "http://localhost:8080", "Tracker service base URL")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", httpclient.DefaultTimeout, "HTTP timeout")

	root.AddCommand(
		newPetsCmd(a),
		newRecordsCmd(a, "vaccinations", "Vaccination records"),
		newRecordsCmd(a, "medications", "Medication records"),
		newRecordsCmd(a, "appointments", "Vet appointments"),
		newUndoCmd(a),
		newSampleDataCmd(a),
	)
	return root
}

func (a *app) get(ctx context.Context, path string, out any) error {
	return a.client.Get(ctx, path, out)
}

func (a *app) post(ctx context.Context, path string, out any) error {
	return a.client.Post(ctx, path, nil, out)
}

func (a *app) delete(ctx context.Context, path string, out any) error {
	return a.client.Delete(ctx, path, out)
}
