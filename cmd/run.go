/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/csvimport/import-wizard/tui"
)

const wizardLogFileName = "wizard.log"

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the interactive import wizard",
	Long: `The run command opens the four step import wizard in the terminal:

1. Start: begin a new import or choose one of the saved templates
2. Upload file: pick a CSV or TXT file and adjust delimiter, encoding and header options
3. Map columns: select the destination type, map columns, add static fields, save a template
4. Import: run the import or a dry run, filter the log and export the report

Logs are written to wizard.log in the data folder while the wizard is open.

Examples:
  # Start the wizard with the default data folder
  csv-import-wizard run

  # Keep templates in a project folder and log at debug level
  csv-import-wizard run --dataFolderPath ./imports --verbosity debug`,
	Run: func(cmd *cobra.Command, args []string) {
		configureLogger()
		folderPath := dataFolderPath()

		logFilePath := filepath.Join(folderPath, wizardLogFileName)
		logFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Fatalf("Error opening log file %s: %v", logFilePath, err)
		}
		defer logFile.Close()
		log.SetOutput(logFile)

		app := newApplication(folderPath)
		log.Infof("Starting import wizard with %d saved templates", len(app.templateClient.List()))

		if err := tui.Run(app.wizard); err != nil {
			log.SetOutput(os.Stderr)
			log.Fatalf("Error running import wizard: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
