package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tablegate/tablegate/internal/config"
)

func newResourceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resource",
		Short: "Manage the table resources exposed by the gateway config",
		Long:  "Add, list, and remove the per-table blocks in the gateway config file.",
	}

	cmd.AddCommand(newResourceAddCmd())
	cmd.AddCommand(newResourceListCmd())
	cmd.AddCommand(newResourceRemoveCmd())
	return cmd
}

func newResourceAddCmd() *cobra.Command {
	var (
		service   string
		tableName string
		apiName   string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a table resource to the config file",
		Example: `  gateway resource add --service mydb --table employees
  gateway resource add --service mydb --table employees --name staff`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResourceAdd(service, tableName, apiName)
		},
	}

	cmd.Flags().StringVar(&service, "service", "", "service name this table belongs to (required)")
	cmd.Flags().StringVar(&tableName, "table", "", "table name to expose (required)")
	cmd.Flags().StringVar(&apiName, "name", "", "resource name exposed in the URL (defaults to table name)")
	return cmd
}

func runResourceAdd(service, tableName, apiName string) error {
	if service == "" || tableName == "" {
		return fmt.Errorf("--service and --table are required")
	}

	f, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	for _, t := range f.Tables {
		if t.TableName == tableName && t.Service == service {
			return fmt.Errorf("table %q on service %q is already exposed", tableName, service)
		}
	}

	f.Tables = append(f.Tables, config.TableConfig{
		Service:   service,
		TableName: tableName,
		APIName:   apiName,
	})

	if err := saveConfig(f); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	fmt.Printf("added resource %q (%s.%s)\n", displayName(apiName, tableName), service, tableName)
	return nil
}

func newResourceListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the table resources in the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if len(f.Tables) == 0 {
				fmt.Println("no resources configured")
				return nil
			}
			for _, t := range f.Tables {
				fmt.Printf("%-20s service=%-15s table=%s\n", displayName(t.APIName, t.TableName), t.Service, t.TableName)
			}
			return nil
		},
	}
}

func newResourceRemoveCmd() *cobra.Command {
	var service string

	cmd := &cobra.Command{
		Use:   "remove <table>",
		Short: "Remove a table resource from the config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResourceRemove(service, args[0])
		},
	}
	cmd.Flags().StringVar(&service, "service", "", "service name; when empty, the table is removed from every service")
	return cmd
}

func runResourceRemove(service, tableName string) error {
	f, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	kept := f.Tables[:0]
	removed := false
	for _, t := range f.Tables {
		if t.TableName == tableName && (service == "" || t.Service == service) {
			removed = true
			continue
		}
		kept = append(kept, t)
	}
	if !removed {
		return fmt.Errorf("no resource named %q found", tableName)
	}
	f.Tables = kept

	if err := saveConfig(f); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	fmt.Printf("removed resource %q\n", tableName)
	return nil
}

func displayName(apiName, tableName string) string {
	if apiName != "" {
		return apiName
	}
	return tableName
}
