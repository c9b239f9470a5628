/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/csvimport/import-wizard/analyzer"
	"github.com/csvimport/import-wizard/csv"
	"github.com/csvimport/import-wizard/filepathparser"
	"github.com/csvimport/import-wizard/hcl"
	"github.com/csvimport/import-wizard/importer"
	"github.com/csvimport/import-wizard/json"
	"github.com/csvimport/import-wizard/schema"
	"github.com/csvimport/import-wizard/templates"
	"github.com/csvimport/import-wizard/wizard"
)

var log = logrus.New()

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "csv-import-wizard",
	Short: "Import CSV files into the asset inventory through a guided wizard",
	Long: `csv-import-wizard walks you through importing a delimited text file:

1. Start a new import or pick a saved template
2. Upload a CSV or TXT file and tune the parse options
3. Choose a destination type and map columns to its fields
4. Run the import (or a dry run) and export the report

Templates are stored in the data folder and can be reused, listed and exported.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.csv-import-wizard.yaml)")

	rootCmd.PersistentFlags().StringP("verbosity", "v", "info", "Log verbosity level (panic, fatal, error, warn, info, debug, trace)")
	viper.BindPFlag("verbosity", rootCmd.PersistentFlags().Lookup("verbosity"))
	rootCmd.PersistentFlags().Bool("structuredLogs", false, "Write logs as JSON")
	viper.BindPFlag("structuredLogs", rootCmd.PersistentFlags().Lookup("structuredLogs"))
	rootCmd.PersistentFlags().StringP("dataFolderPath", "d", "~/.csv-import-wizard", "Folder holding templates, reports and logs")
	viper.BindPFlag("dataFolderPath", rootCmd.PersistentFlags().Lookup("dataFolderPath"))
	rootCmd.PersistentFlags().String("schemaPath", "", "YAML catalog of destination types and fields (defaults to the built-in catalog)")
	viper.BindPFlag("schemaPath", rootCmd.PersistentFlags().Lookup("schemaPath"))
	rootCmd.PersistentFlags().Int("rowDelayMinMs", 50, "Minimum simulated delay per imported row in milliseconds")
	viper.BindPFlag("rowDelayMinMs", rootCmd.PersistentFlags().Lookup("rowDelayMinMs"))
	rootCmd.PersistentFlags().Int("rowDelayMaxMs", 150, "Maximum simulated delay per imported row in milliseconds")
	viper.BindPFlag("rowDelayMaxMs", rootCmd.PersistentFlags().Lookup("rowDelayMaxMs"))
	rootCmd.PersistentFlags().Int64("maxFileSizeBytes", filepathparser.DefaultMaxFileSizeBytes, "Largest file accepted for upload")
	viper.BindPFlag("maxFileSizeBytes", rootCmd.PersistentFlags().Lookup("maxFileSizeBytes"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".csv-import-wizard")
	}

	viper.SetEnvPrefix("CSV_IMPORT_WIZARD")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintln(os.Stderr, "Error reading config file:", err)
		os.Exit(1)
	}
}

func configureLogger() {
	logVerbosity := viper.GetString("verbosity")
	logLevel, err := logrus.ParseLevel(logVerbosity)
	if err != nil {
		log.Fatalf("Invalid log level: %s", logVerbosity)
	}
	log.SetLevel(logLevel)
	log.SetFormatter(&logrus.TextFormatter{})
	if viper.GetBool("structuredLogs") {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	for key, value := range viper.GetViper().AllSettings() {
		log.Debugf("Command Flag: %s = %v", key, value)
	}
}

func dataFolderPath() string {
	folderPath, err := filepathparser.ParsePath(viper.GetString("dataFolderPath"))
	if err != nil {
		log.Fatalf("Error getting data folder path: %v", err)
	}
	if err := os.MkdirAll(folderPath, 0755); err != nil {
		log.Fatalf("Error creating data folder %s: %v", folderPath, err)
	}
	return folderPath
}

type application struct {
	wizard         *wizard.Wizard
	templateClient *templates.TemplateClient
	csvClient      *csv.CsvClient
	hclClient      *hcl.HclClient
	schemaClient   *schema.SchemaClient
}

func newApplication(folderPath string) *application {
	schemaPath := viper.GetString("schemaPath")
	if schemaPath != "" {
		parsedPath, err := filepathparser.ParsePath(schemaPath)
		if err != nil {
			log.Fatalf("Error getting schema path: %v", err)
		}
		schemaPath = parsedPath
	}

	schemaClient, err := schema.NewSchemaClient(schemaPath, log)
	if err != nil {
		log.Fatalf("Error loading schema catalog: %v", err)
	}

	jsonClient := json.NewJsonClient(
		folderPath,
		log,
	)

	templateClient := templates.NewTemplateClient(
		jsonClient,
		log,
	)

	csvClient := csv.NewCsvClient(
		folderPath,
		log,
	)

	hclClient := hcl.NewHclClient(
		folderPath,
		log,
	)

	importClient := importer.NewImportClient(
		time.Duration(viper.GetInt("rowDelayMinMs"))*time.Millisecond,
		time.Duration(viper.GetInt("rowDelayMaxMs"))*time.Millisecond,
		log,
	)

	importWizard := wizard.New(
		templateClient,
		csvClient,
		analyzer.NewMappingClient(log),
		schemaClient,
		importClient,
		viper.GetInt64("maxFileSizeBytes"),
		log,
	)

	return &application{
		wizard:         importWizard,
		templateClient: templateClient,
		csvClient:      csvClient,
		hclClient:      hclClient,
		schemaClient:   schemaClient,
	}
}
