// Package main is the acervoctl CLI, a terminal consumer of the acervo API.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"acervo/pkg/client"
)

var rootCmd = &cobra.Command{
	Use:   "acervoctl",
	Short: "Terminal client for the acervo academic repository",
	Long: `acervoctl browses, searches and manages the acervo academic document
repository from the terminal. Authenticate with "acervoctl login", then use
"search", "get", "download" and "upload". Administrative commands (rm, users,
role, stats) require an ADMIN account.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./acervoctl.yaml or ~/.config/acervoctl/config.yaml)")
	rootCmd.PersistentFlags().String("server", "", "server base URL (default: http://localhost:8080)")
	rootCmd.PersistentFlags().Bool("json", false, "print raw JSON instead of tables")

	viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.SetDefault("server", "http://localhost:8080")
	viper.SetDefault("page_size", 9)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("acervoctl")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "acervoctl"))
		}
	}

	viper.SetEnvPrefix("ACERVOCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	_ = viper.ReadInConfig()
}

// stateDir is where the session token lives between invocations.
func stateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".config", "acervoctl")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

func tokenPath() (string, error) {
	dir, err := stateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "token"), nil
}

func loadToken() string {
	path, err := tokenPath()
	if err != nil {
		return ""
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func saveToken(token string) error {
	path, err := tokenPath()
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(token+"\n"), 0o600)
}

func clearToken() {
	if path, err := tokenPath(); err == nil {
		os.Remove(path)
	}
}

// newClient builds a Client from the config and the saved session.
func newClient() *client.Client {
	return client.New(viper.GetString("server"),
		client.WithToken(loadToken()),
		client.WithPageSize(viper.GetInt("page_size")),
	)
}

func newCache() *client.Cache {
	return client.NewCache(newClient())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "acervoctl:", err)
		os.Exit(1)
	}
}
