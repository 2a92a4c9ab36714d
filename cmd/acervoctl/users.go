package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"acervo/pkg/model"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List accounts (admin)",
	RunE: func(cmd *cobra.Command, args []string) error {
		search, _ := cmd.Flags().GetString("search")
		page, _ := cmd.Flags().GetInt("page")

		up, err := newCache().Users(cmd.Context(), search, page)
		if err != nil {
			return err
		}
		return printUserPage(up, page)
	},
}

var roleCmd = &cobra.Command{
	Use:   "role <id> <USER|ADMIN>",
	Short: "Change an account's role (admin)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		role := model.Role(args[1])
		if role != model.RoleUser && role != model.RoleAdmin {
			return fmt.Errorf("papel inválido: %s", args[1])
		}

		c := newClient()
		me, err := c.Me(cmd.Context())
		if err != nil {
			return err
		}

		cache := newCache()
		user, err := cache.UpdateUserRole(cmd.Context(), *me, args[0], role)
		if err != nil {
			return err
		}
		fmt.Printf("%s agora é %s\n", user.Name, user.Role)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the administration dashboard counters (admin)",
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := newCache().AdminStats(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput() {
			return printJSON(stats)
		}
		fmt.Printf("documentos:       %d\n", stats.TotalDocuments)
		fmt.Printf("novos no mês:     %d\n", stats.DocumentsThisMonth)
		fmt.Printf("downloads:        %d\n", stats.TotalDownloads)
		fmt.Printf("contas:           %d\n", stats.TotalUsers)
		fmt.Printf("administradores:  %d\n", stats.TotalAdmins)
		fmt.Printf("contas ativas:    %d\n", stats.ActiveUsers)
		return nil
	},
}

func init() {
	usersCmd.Flags().String("search", "", "filter by name or email")
	usersCmd.Flags().Int("page", 1, "result page")

	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(roleCmd)
	rootCmd.AddCommand(statsCmd)
}
