package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"vesselcad/pkg/standards"
)

var (
	resolveStandard string
	resolveClass    string
	resolveFace     string
	resolveSize     float64
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Look up a standard part's dimensions",
	Long: `Resolves one part spec against the standards database and prints the
record, interpolating between tabulated sizes when the exact size is absent.

Example:
  vesselcad resolve --db standards.db --standard EN1092-1/11 --class PN16 --face B1 --size 125`,
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&resolveStandard, "standard", "", "Standard family (required)")
	resolveCmd.Flags().StringVar(&resolveClass, "class", "", "Pressure class")
	resolveCmd.Flags().StringVar(&resolveFace, "face", "", "Face type code")
	resolveCmd.Flags().Float64Var(&resolveSize, "size", 0, "Nominal size (required)")
	_ = resolveCmd.MarkFlagRequired("standard")
	_ = resolveCmd.MarkFlagRequired("size")
}

func runResolve(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	src, closeSrc, err := openSource()
	if err != nil {
		return err
	}
	defer closeSrc()

	rec, err := standards.NewResolver(src).Resolve(ctx, standards.StandardPartSpec{
		Family:        resolveStandard,
		PressureClass: resolveClass,
		FaceType:      resolveFace,
		NominalSize:   resolveSize,
	})
	if err != nil {
		return err
	}

	fmt.Printf("%s [%s] %s\n", rec.Spec, rec.Units, rec.Provenance)
	names := make([]string, 0, len(rec.Fields))
	for name := range rec.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-16s %s\n", name, rec.Fields[name])
	}
	if rec.Image != "" {
		fmt.Printf("  %-16s %s\n", "image", rec.Image)
	}
	return nil
}
