package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	dbcmd "github.com/Alijeyrad/fieldcare/cmd/db"
	httpcmd "github.com/Alijeyrad/fieldcare/cmd/http"
	patientscmd "github.com/Alijeyrad/fieldcare/cmd/patients"
	systemcmd "github.com/Alijeyrad/fieldcare/cmd/system"
)

var (
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "fieldcare",
	Short: "Home-visit record keeping for primary care field teams.",
	Long: `fieldcare keeps the patient roster and home-visit records of a primary care
field team. Patients are imported from the programme spreadsheets, visits are
recorded per care pathway and can be forwarded to a remote spreadsheet.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global config flag, available for all commands.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")

	// Attach top-level command trees.
	rootCmd.AddCommand(systemcmd.NewSystemCommand())
	rootCmd.AddCommand(httpcmd.NewHTTPCommand())
	rootCmd.AddCommand(dbcmd.NewDBCommand())
	rootCmd.AddCommand(patientscmd.NewPatientsCommand())
}
