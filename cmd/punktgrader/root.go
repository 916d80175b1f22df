package main

import (
	"github.com/spf13/cobra"

	"github.com/AlvinPalmgren/PunktGrader/version"
)

var (
	cfgFile string
	homeDir string
)

var rootCmd = &cobra.Command{
	Use:   "punktgrader",
	Short: "Split per-student exam PDFs into per-problem PDFs for grading",
	Long: `PunktGrader splits a batch of per-student exam PDFs into one PDF per
problem so that different graders can each grade a single problem across
all students.

The pipeline:
  - Upload one PDF per student
  - Label each page with its problem number(s), or mark it "not a problem"
  - Submitted pages are stamped with provenance watermarks in the background
  - Finalize concatenates all stamped pages per problem into one PDF`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.punktgrader/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "punktgrader home directory (default: ~/.punktgrader)",
	)

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
}
