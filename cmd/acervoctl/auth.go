package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate and store the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		reader := bufio.NewReader(os.Stdin)
		if email == "" {
			fmt.Fprint(os.Stderr, "email: ")
			line, err := reader.ReadString('\n')
			if err != nil {
				return err
			}
			email = strings.TrimSpace(line)
		}
		if password == "" {
			fmt.Fprint(os.Stderr, "senha: ")
			line, err := reader.ReadString('\n')
			if err != nil {
				return err
			}
			password = strings.TrimSpace(line)
		}

		c := newClient()
		user, err := c.Login(cmd.Context(), email, password)
		if err != nil {
			return err
		}
		if err := saveToken(c.Token()); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
		fmt.Printf("autenticado como %s <%s> (%s)\n", user.Name, user.Email, user.Role)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		err := newClient().Logout(cmd.Context())
		clearToken()
		if err != nil {
			return err
		}
		fmt.Println("sessão encerrada")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the authenticated account",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := newClient().Me(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput() {
			return printJSON(user)
		}
		fmt.Printf("%s <%s> (%s)\n", user.Name, user.Email, user.Role)
		return nil
	},
}

func init() {
	loginCmd.Flags().String("email", "", "institutional email")
	loginCmd.Flags().String("password", "", "password (prompted when omitted)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}
