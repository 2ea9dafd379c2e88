package cli

import (
	"fmt"

	"recon-backend/internal/database"
	"recon-backend/internal/ledger"
	"recon-backend/internal/models"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary <partner-code>",
	Short: "Print a partner's full-history total, paid and balance",
	Example: `  recon summary C001
  recon summary S001 --role supplier`,
	Args: cobra.ExactArgs(1),
	RunE: runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)

	summaryCmd.Flags().String("role", "", "customer or supplier (default: the partner's own role)")
}

func runSummary(cmd *cobra.Command, args []string) error {
	code := args[0]
	roleFlag, _ := cmd.Flags().GetString("role")

	db, err := openDB()
	if err != nil {
		return err
	}
	defer database.Close(db)

	store := ledger.NewStore(db)
	var role models.PartnerRole
	if roleFlag != "" {
		if role, err = models.ParsePartnerRole(roleFlag); err != nil {
			return err
		}
	} else {
		p, err := store.FindPartner(cmd.Context(), code)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("partner %q not found", code)
		}
		role = p.Role
	}

	s, err := store.Summarize(cmd.Context(), code, role)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "partner: %s (%s)\ntotal:   %s\npaid:    %s\nbalance: %s\n",
		code, role, s.Total, s.Paid, s.Balance)
	return nil
}
