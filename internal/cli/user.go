package cli

import (
	"fmt"

	"recon-backend/internal/auth"
	"recon-backend/internal/database"
	"recon-backend/internal/logger"
	"recon-backend/internal/models"

	"github.com/spf13/cobra"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password <password>",
	Short: "Print a bcrypt hash for a password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := auth.HashPassword(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage API users",
}

var userAddCmd = &cobra.Command{
	Use:     "add <username>",
	Short:   "Create an enabled API user",
	Example: `  recon user add alice --role editor --password 's3cret-pass'`,
	Args:    cobra.ExactArgs(1),
	RunE:    runUserAdd,
}

func init() {
	rootCmd.AddCommand(hashPasswordCmd)
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userAddCmd)

	userAddCmd.Flags().String("role", string(models.RoleReader), "admin, editor or reader")
	userAddCmd.Flags().String("password", "", "Password (at least 8 characters)")
	userAddCmd.Flags().String("display-name", "", "Name shown in the UI")
	_ = userAddCmd.MarkFlagRequired("password")
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("user")

	role, _ := cmd.Flags().GetString("role")
	password, _ := cmd.Flags().GetString("password")
	displayName, _ := cmd.Flags().GetString("display-name")

	db, err := openDB()
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		return err
	}

	user, err := auth.CreateUser(cmd.Context(), db, auth.NewUser{
		Username:    args[0],
		DisplayName: displayName,
		Password:    password,
		Role:        models.UserRole(role),
	})
	if err != nil {
		return err
	}

	log.Info().Str("username", user.Username).Str("role", string(user.Role)).Msg("User created")
	fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", user.Username, user.Role)
	return nil
}
