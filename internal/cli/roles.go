package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/roach88/funcbind/internal/registry"
)

// RegistryRoles lists the roles of one registry.
type RegistryRoles struct {
	Registry string   `json:"registry"`
	Usages   []string `json:"usages"`
	Roles    []string `json:"roles"`
}

// NewRolesCommand creates the roles command.
func NewRolesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "roles",
		Short: "List the binding roles known to each registry",
		Long: `List the role names registered in the trigger, input, input/output and
output registries, and the parameter usages that consult each registry.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoles(rootOpts, cmd)
		},
	}
}

func runRoles(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	listing := ListRoles(opts.catalog())

	if formatter.Format == "json" {
		return formatter.Success(listing)
	}

	heading := color.New(color.Bold, color.FgCyan)
	for i, r := range listing {
		if i > 0 {
			fmt.Fprintln(formatter.Writer)
		}
		heading.Fprintf(formatter.Writer, "%s", r.Registry)
		fmt.Fprintf(formatter.Writer, " (usage: %s)\n", strings.Join(r.Usages, ", "))
		for _, role := range r.Roles {
			fmt.Fprintf(formatter.Writer, "  %s\n", role)
		}
	}
	return nil
}

// ListRoles returns the roles of every registry of catalog, in lookup order.
func ListRoles(catalog *registry.Catalog) []RegistryRoles {
	var out []RegistryRoles
	for _, k := range registry.Kinds {
		r := catalog.Registry(k)
		usages := []string{}
		for _, u := range []registry.Usage{registry.UsageTrigger, registry.UsageInput, registry.UsageShared, registry.UsageOutput} {
			if registry.Consults(u, k) {
				usages = append(usages, u.String())
			}
		}
		out = append(out, RegistryRoles{
			Registry: k.String(),
			Usages:   usages,
			Roles:    r.Roles(),
		})
	}
	return out
}
