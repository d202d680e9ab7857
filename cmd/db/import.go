package db

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/fieldcare/internal/service/importer"
)

func NewImportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Replace the patient data with the contents of a workbook",
		Long: `Read the TPC, PBK, PBG, PBD and PBH tabs of the workbook and replace the
stored patient data with them. Stored data is left unchanged when no tab
yields a patient.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			st, closeStore, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			db, err := importer.New(st, slog.Default()).Import(cmd.Context(), f)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d patients\n", db.PatientCount())
			fmt.Fprintf(out, "  general:  %d\n", len(db.GeneralPatients))
			fmt.Fprintf(out, "  pregnant: %d\n", len(db.PregnantPatients))
			fmt.Fprintf(out, "  chronic:  %d\n", len(db.ChronicPatients))
			return nil
		},
	}

	return cmd
}

func NewTemplateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template <out.xlsx>",
		Short: "Write an empty import workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := importer.New(nil, slog.Default()).Template()
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[0], data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Template written to %s\n", args[0])
			return nil
		},
	}

	return cmd
}
