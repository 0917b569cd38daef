package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vesselcad/pkg/assembly"
	"vesselcad/pkg/host/dxfhost"
	"vesselcad/pkg/sequence"
	"vesselcad/pkg/standards"
	"vesselcad/pkg/standards/sqlitestore"
)

var buildOut string

var buildCmd = &cobra.Command{
	Use:   "build [request.yaml]",
	Short: "Run an assembly request into a DXF drawing",
	Long: `Reads a YAML build request, resolves every part against the standards
database, derives the flat-pattern geometry and writes the construction
result as a DXF drawing. A failed construction rolls back and leaves no
output file.`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVarP(&buildOut, "out", "o", "vessel.dxf", "Output drawing path")
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening request: %w", err)
	}
	defer f.Close()

	req, err := assembly.ParseRequest(f)
	if err != nil {
		return err
	}

	src, closeSrc, err := openSource()
	if err != nil {
		return err
	}
	defer closeSrc()

	h := dxfhost.New()
	builder := assembly.NewBuilder(standards.NewResolver(src), h, assembly.WithLogger(logger))

	res, err := builder.Build(ctx, req)
	if err != nil {
		return err
	}
	report := res.Report
	if report.State != sequence.StateCompleted {
		logger.Error("construction did not complete",
			zap.String("vessel", res.Vessel),
			zap.String("session", report.SessionID),
			zap.String("state", report.State.String()),
			zap.String("failed_step", report.FailedStep))
		if report.RollbackErr != nil {
			return fmt.Errorf("build %s: %w (rollback: %v)", res.Vessel, report.Err, report.RollbackErr)
		}
		return fmt.Errorf("build %s: %w", res.Vessel, report.Err)
	}

	if err := h.Save(buildOut); err != nil {
		return err
	}
	fmt.Printf("%s: %d parts -> %s\n", res.Vessel, len(report.Handles), buildOut)
	return nil
}

// openSource opens the standards database when one was given; otherwise every
// part must be fully job-defined.
func openSource() (standards.Source, func(), error) {
	if dbPath == "" {
		return standards.NewMemSource(), func() {}, nil
	}
	store, err := sqlitestore.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening standards database: %w", err)
	}
	return store, func() { _ = store.Close() }, nil
}
