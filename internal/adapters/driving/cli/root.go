// Package cli implements the cobra command tree for the FormGate CLI.
//
// Commands talk to the core exclusively through the driving ports; package
// level service variables are wired at startup and swapped for mocks in
// tests.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/formgate/formgate-cli/internal/core/ports/driven"
	"github.com/formgate/formgate-cli/internal/core/ports/driving"
	"github.com/formgate/formgate-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Services wired at startup. Commands check for nil so the binary still
// answers version/config queries when the pipeline is not configured.
var (
	extractionService driving.ExtractionCoordinator
	validationService driving.ValidationEngine
	indexService      driving.IndexBuilder
	reportService     driving.ReportAssembler
	reportStore       driven.ReportStore
	configStore       driven.ConfigStore
	corpusWatch       func(ctx context.Context) error
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "formgate",
	Short: "Validate bank forms against policy documents",
	Long: `FormGate extracts the fields of a scanned or digitized bank form and
checks each one against a semantic index of bank policy documents,
producing a compliance report.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
}

// Deps carries the wired services into the command tree.
type Deps struct {
	Extraction driving.ExtractionCoordinator
	Validation driving.ValidationEngine
	Indexer    driving.IndexBuilder
	Reporter   driving.ReportAssembler
	Reports    driven.ReportStore
	Config     driven.ConfigStore

	// Watch blocks watching the corpus directory, rebuilding the index on
	// change. Optional.
	Watch func(ctx context.Context) error

	Version string
}

// SetDeps installs the services the commands run against.
func SetDeps(d Deps) {
	extractionService = d.Extraction
	validationService = d.Validation
	indexService = d.Indexer
	reportService = d.Reporter
	reportStore = d.Reports
	configStore = d.Config
	corpusWatch = d.Watch
	if d.Version != "" {
		version = d.Version
	}
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
