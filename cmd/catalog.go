package cmd

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/repolens/internal/app"
	"github.com/firefly-engineering/repolens/internal/catalog"
	"github.com/firefly-engineering/repolens/internal/manifest"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Show the active catalog data",
	Long: `Catalog prints the data driving detection: ignore patterns, languages,
frameworks and manifest formats. Extension files listed under
catalog.files in the config are merged over the built-in data.`,
	Args: cobra.NoArgs,
	RunE: runCatalog,
}

func init() {
	catalogCmd.AddCommand(
		catalogListCmd("ignore", "List ignore patterns", printIgnore),
		catalogListCmd("languages", "List languages and how they are recognised", printLanguages),
		catalogListCmd("frameworks", "List frameworks and their signals", printFrameworks),
		catalogListCmd("manifests", "List supported manifest formats", printManifests),
	)
	rootCmd.AddCommand(catalogCmd)
}

func catalogListCmd(use, short string, render func(io.Writer, *catalog.Catalog)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			render(w, app.Default.Catalog)
			return w.Flush()
		},
	}
}

func runCatalog(cmd *cobra.Command, args []string) error {
	c := app.Default.Catalog
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Version:\t%s\n", c.Version())
	fmt.Fprintf(w, "Ignore patterns:\t%d\n", len(c.IgnoreRules()))
	fmt.Fprintf(w, "Languages:\t%d\n", len(c.Languages()))
	fmt.Fprintf(w, "Frameworks:\t%d\n", len(c.Frameworks()))
	fmt.Fprintf(w, "Manifest formats:\t%d\n", len(manifest.Formats()))
	if files := cfg().Catalog.Files; len(files) > 0 {
		fmt.Fprintf(w, "Extensions:\t%s\n", strings.Join(files, ", "))
	}
	return w.Flush()
}

func printIgnore(w io.Writer, c *catalog.Catalog) {
	fmt.Fprintln(w, "PATTERN\tKIND\tREASON")
	fmt.Fprintln(w, "-------\t----\t------")
	for _, r := range c.IgnoreRules() {
		kind := string(r.Kind)
		if kind == "" {
			kind = "any"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.Pattern, kind, r.Reason)
	}
}

func printLanguages(w io.Writer, c *catalog.Catalog) {
	fmt.Fprintln(w, "LANGUAGE\tEXTENSIONS\tFILENAMES\tINTERPRETERS")
	fmt.Fprintln(w, "--------\t----------\t---------\t------------")
	for _, l := range c.Languages() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", l.Name, orDash(l.Extensions), orDash(l.Filenames), orDash(l.Interpreters))
	}
}

func printFrameworks(w io.Writer, c *catalog.Catalog) {
	fmt.Fprintln(w, "FRAMEWORK\tPACKAGES\tIMPORTS\tFILES")
	fmt.Fprintln(w, "---------\t--------\t-------\t-----")
	for _, f := range c.Frameworks() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f.Name, signalKeys(f.Packages), signalKeys(f.Imports), orDash(f.Files))
	}
}

func printManifests(w io.Writer, _ *catalog.Catalog) {
	fmt.Fprintln(w, "FORMAT\tPATTERN\tECOSYSTEM\tKIND")
	fmt.Fprintln(w, "------\t-------\t---------\t----")
	for _, f := range manifest.Formats() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f.Name, f.Pattern, f.Ecosystem, f.Kind)
	}
}

// signalKeys lists which ecosystems or languages carry signals.
func signalKeys(m map[string][]string) string {
	return orDash(slices.Sorted(maps.Keys(m)))
}

func orDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ",")
}
