package patients

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/fieldcare/config"
	"github.com/Alijeyrad/fieldcare/internal/app"
	"github.com/Alijeyrad/fieldcare/internal/domain"
	"github.com/Alijeyrad/fieldcare/internal/service/patient"
	"github.com/Alijeyrad/fieldcare/pkg/logs"
)

func NewPatientsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patients",
		Short: "Query the patient roster",
	}

	cmd.AddCommand(NewSearchCommand())
	cmd.AddCommand(NewLookupCommand())

	return cmd
}

func newService(cmd *cobra.Command) (patient.Service, func() error, error) {
	cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	cfg, err := config.ReadConfig(cfgPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read config: %w", err)
	}
	slog.SetDefault(logs.New(cfg))

	st, closeStore, err := app.OpenStore(cmd.Context(), cfg, slog.Default())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open storage: %w", err)
	}
	return patient.New(st), closeStore, nil
}

func NewSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <name>",
		Short: "Find patients by name, ignoring case and accents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeStore, err := newService(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			found, err := svc.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			for _, p := range found {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%d visits\n", p.Nome, p.CPF, p.Kind(), len(p.Visits))
			}
			return nil
		},
	}

	return cmd
}

func NewLookupCommand() *cobra.Command {
	var field, value, pathway string

	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Find one patient by CPF or CNS",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := domain.ParseDocumentField(field)
			if err != nil {
				return err
			}
			primary := domain.CollectionGeneral
			if pathway != "" {
				pw, err := domain.PathwayByID(pathway)
				if err != nil {
					return err
				}
				primary = pw.Collection
			}

			svc, closeStore, err := newService(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			p, err := svc.Lookup(cmd.Context(), patient.LookupRequest{Field: f, Value: value, Primary: primary})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(p)
		},
	}

	cmd.Flags().StringVar(&field, "field", "cpf", "Document field: cpf or cns")
	cmd.Flags().StringVar(&value, "value", "", "Document value, punctuation is ignored")
	cmd.Flags().StringVar(&pathway, "pathway", "", "Care pathway id whose collection is searched first")
	_ = cmd.MarkFlagRequired("value")

	return cmd
}
