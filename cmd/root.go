package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	Version = "0.4.0"
)

func showBanner() {
	greenColor := color.New(color.FgGreen, color.Bold)

	banner := []string{
		"╔══════════════════════════════════════════════════════╗",
		"║     ██████╗ ██╗   ██╗███╗   ███╗███╗   ███╗██╗   ██╗   ║",
		"║     ██╔══██╗██║   ██║████╗ ████║████╗ ████║╚██╗ ██╔╝   ║",
		"║     ██║  ██║██║   ██║██╔████╔██║██╔████╔██║ ╚████╔╝    ║",
		"║     ██║  ██║██║   ██║██║╚██╔╝██║██║╚██╔╝██║  ╚██╔╝     ║",
		"║     ██████╔╝╚██████╔╝██║ ╚═╝ ██║██║ ╚═╝ ██║   ██║      ║",
		"║     ╚═════╝  ╚═════╝ ╚═╝     ╚═╝╚═╝     ╚═╝   ╚═╝      ║",
		"║                                                      ║",
		"║        Relational dummy data, table by table         ║",
		"╚══════════════════════════════════════════════════════╝",
	}

	for _, line := range banner {
		greenColor.Println(line)
	}

	fmt.Print("                   ")
	color.New(color.FgCyan, color.Bold).Print("Version: ")
	color.New(color.FgYellow, color.Bold).Printf("%s\n", Version)
}

var rootCmd = &cobra.Command{
	Use:   "dummygen",
	Short: "Generate realistic dummy data for relational databases",
	Long: `
dummygen fills the tables of a project with generated rows. Every column
picks its own source: procedural faker values, a remote language model,
an uploaded CSV/TSV/JSON file, a fixed value, or existing values of a
referenced table.

Output is either one SQL file per table, packaged into a zip archive, or
direct inserts into the project database.

Database Support:
- PostgreSQL
- MySQL
- SQLite`,

	Run: func(cmd *cobra.Command, args []string) {
		showVersion, _ := cmd.Flags().GetBool("version")
		if showVersion {
			fmt.Printf("dummygen version %s\n", Version)
			os.Exit(0)
		}

		if len(args) == 0 {
			showBanner()
			fmt.Println()
			cmd.Help()
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./dummygen.config.json)")
	rootCmd.Flags().BoolP("version", "v", false, "Show CLI version")
}

func initConfig() {
	if err := godotenv.Load(); err != nil {
		godotenv.Load(".env")
		godotenv.Load(".env.local")
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("json")
		viper.SetConfigName("dummygen.config")
	}

	viper.SetEnvPrefix("DUMMYGEN")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgFile != "" {
			color.Yellow("⚠️  Could not read config: %v", err)
		}
	}
}
