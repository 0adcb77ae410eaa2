package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gogpu/cdivs/shape"
)

func newShapesCmd() *cobra.Command {
	var (
		library string
		decor   bool
	)
	cmd := &cobra.Command{
		Use:   "shapes",
		Short: "List the shape library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadLibrary(library); err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tABBR\tKIND")
			for _, name := range shape.Names() {
				if shape.IsDecor(name) != decor {
					continue
				}
				p, err := shape.Find(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", strings.TrimPrefix(name, "_"), shape.Abbr(name), kind(p))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&library, "library", "l", "", "YAML file with extra shape definitions")
	cmd.Flags().BoolVar(&decor, "decor", false, "list decorative cut patterns instead")
	return cmd
}

func kind(p *shape.Program) string {
	var parts []string
	switch {
	case p.Static():
		parts = append(parts, "static")
	case p.Animated():
		parts = append(parts, "animated")
	}
	if p.Shifts() {
		parts = append(parts, "shift")
	}
	if p.Header.IsPattern() {
		parts = append(parts, "pattern")
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ",")
}

// loadLibrary registers the shapes of a YAML library file.
func loadLibrary(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read library: %w", err)
	}
	defs, err := shape.ParseLibrary(data)
	if err != nil {
		return err
	}
	for _, d := range defs {
		if err := shape.Register(d); err != nil {
			return err
		}
	}
	return nil
}
