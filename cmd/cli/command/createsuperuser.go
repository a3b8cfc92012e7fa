package command

import (
	"context"
	"fmt"
	"time"

	"yamdb/database"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/service"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// createSuperuserCmd creates a verified admin. Admins can then promote other
// users through the API.
var createSuperuserCmd = &cobra.Command{
	Use:   "createsuperuser",
	Short: "Create an administrator account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		email, _ := cmd.Flags().GetString("email")

		db, _, log, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close(db)

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		users := service.NewUserService(repository.NewUserRepository(db), log)
		user, err := users.CreateSuperuser(ctx, username, email)
		if err != nil {
			return fmt.Errorf("create superuser: %w", err)
		}

		color.Green("✓ Superuser created")
		fmt.Printf("Username: %s\n", user.Username)
		fmt.Printf("Email:    %s\n", user.Email)
		fmt.Printf("Role:     %s\n", user.Role)
		fmt.Println("Request a confirmation code with POST /v1/auth/signup to obtain a token.")
		return nil
	},
}

func init() {
	createSuperuserCmd.Flags().StringP("username", "u", "", "username of the new admin")
	createSuperuserCmd.Flags().StringP("email", "e", "", "email address of the new admin")
	createSuperuserCmd.MarkFlagRequired("username")
	createSuperuserCmd.MarkFlagRequired("email")
}
