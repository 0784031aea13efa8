package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/yuja201/S13P31B201-sub000/internal/config"
	"github.com/yuja201/S13P31B201-sub000/internal/faker"
	"github.com/yuja201/S13P31B201-sub000/internal/generation"
	"github.com/yuja201/S13P31B201-sub000/internal/schema"
)

var inspectProject string

var inspectCmd = &cobra.Command{
	Use:   "inspect [table...]",
	Short: "Show the constraints each column is generated under",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		project, ok := cfg.Project(inspectProject)
		if !ok {
			return fmt.Errorf("%w: %s", generation.ErrProjectNotFound, inspectProject)
		}
		tables, err := schema.LoadDir(project.SchemaDir)
		if err != nil {
			return err
		}

		wanted := map[string]bool{}
		for _, a := range args {
			wanted[strings.ToLower(a)] = true
		}
		for _, t := range tables {
			if len(wanted) > 0 && !wanted[strings.ToLower(t.Name)] {
				continue
			}
			color.Cyan("📋 %s", t.Name)
			for _, col := range t.Columns {
				c := generation.ResolveConstraint(col, t)
				fmt.Printf("   %-20s %-16s %-12s %s\n", col.Name, col.Type, faker.Detect(col.Name, col.Type), describe(c))
			}
			fmt.Println()
		}
		return nil
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List procedural value categories",
	Run: func(cmd *cobra.Command, args []string) {
		locale, _ := cmd.Flags().GetString("locale")
		g := faker.New(locale)
		for _, name := range faker.Categories() {
			c, _ := faker.Lookup(name)
			fmt.Printf("%-12s %-20s %s\n", name, c.Title, strings.Join(g.Examples(name, 2, nil), ", "))
		}
	},
}

func describe(c generation.ColumnConstraint) string {
	var parts []string
	if c.AutoIncrement {
		parts = append(parts, "auto")
	}
	if c.NotNull {
		parts = append(parts, "not null")
	}
	if c.Unique {
		parts = append(parts, "unique")
	}
	if c.MaxLength > 0 {
		parts = append(parts, fmt.Sprintf("len<=%d", c.MaxLength))
	}
	if r := c.NumericRange; r != nil {
		parts = append(parts, fmt.Sprintf("[%g, %g]", r.Min, r.Max))
	}
	if len(c.EnumValues) > 0 {
		parts = append(parts, "in("+strings.Join(c.EnumValues, ",")+")")
	}
	if c.Pattern != "" {
		parts = append(parts, "~"+c.Pattern)
	}
	if c.ReferencedTable != "" {
		parts = append(parts, "→ "+c.ReferencedTable+"."+c.ReferencedColumn)
	}
	return strings.Join(parts, " ")
}

func init() {
	rootCmd.AddCommand(inspectCmd, categoriesCmd)
	inspectCmd.Flags().StringVarP(&inspectProject, "project", "p", "", "project id")
	categoriesCmd.Flags().String("locale", "ko", "locale for the examples")
}
