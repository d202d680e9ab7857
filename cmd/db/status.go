package db

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/fieldcare/internal/service/patient"
	"github.com/Alijeyrad/fieldcare/internal/store"
)

func NewStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether patient data is loaded",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, closeStore, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			status, err := st.Status(cmd.Context())
			if errors.Is(err, store.ErrNotFound) {
				fmt.Fprintln(cmd.OutOrStdout(), "No patient data loaded.")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d patients, loaded at %s\n",
				status.PatientCount, status.LoadedAt.Local().Format(time.DateTime))
			return nil
		},
	}

	return cmd
}

func NewClearCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all stored patient data",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to delete patient data without --yes")
			}

			st, closeStore, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			if err := st.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Patient data cleared.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")

	return cmd
}

func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List every visit, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, closeStore, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			entries, err := patient.New(st).History(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "REGISTERED\tPATIENT\tCPF\tCOLLECTION\tVISIT")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					e.RegisteredAt.Local().Format(time.DateTime), e.PatientName, e.PatientCPF, e.Collection, e.ID)
			}
			return w.Flush()
		},
	}

	return cmd
}
