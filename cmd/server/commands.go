package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"studentnest/internal/auth"
	"studentnest/internal/models"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, db, err := openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.RunMigrations(); err != nil {
				return err
			}
			logger.Info("Database migrations applied")
			return nil
		},
	}
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Create a user with the profile matching its role",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			role, _ := cmd.Flags().GetString("role")
			email, _ := cmd.Flags().GetString("email")
			firstName, _ := cmd.Flags().GetString("first-name")
			lastName, _ := cmd.Flags().GetString("last-name")
			staff, _ := cmd.Flags().GetBool("staff")

			_, _, db, err := openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			user := &models.User{
				Username:  username,
				Email:     email,
				FirstName: firstName,
				LastName:  lastName,
				Role:      models.Role(role),
				IsStaff:   staff,
			}
			if err := db.CreateUser(user); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s (%s)\n", user.Role, user.Username, user.ID)
			return nil
		},
	}
	create.Flags().String("username", "", "unique username")
	create.Flags().String("role", string(models.RoleStudent), "student, landlord or admin")
	create.Flags().String("email", "", "email address")
	create.Flags().String("first-name", "", "first name")
	create.Flags().String("last-name", "", "last name")
	create.Flags().Bool("staff", false, "grant administrator capabilities")
	_ = create.MarkFlagRequired("username")

	cmd.AddCommand(create)
	return cmd
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")

			cfg, _, db, err := openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			user, err := db.GetUserByUsername(username)
			if err != nil {
				return err
			}

			issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
			token, err := issuer.Issue(auth.ActorFromUser(user))
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().String("username", "", "user to mint the token for")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}
