package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	appconfig "github.com/aryeko/planpilot/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and validate the plan without contacting any provider",
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := appconfig.Load(configPath)
	if err != nil {
		return &silentError{cause: err}
	}

	p, err := loadPlan(cfg)
	if err != nil {
		fmt.Printf("invalid: %v\n", err)
		return &silentError{cause: err}
	}

	fmt.Printf("valid: plan %s, %d items\n", p.ID, len(p.Items))
	return nil
}
