package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dshills/aireview/internal/config"
)

func (a *app) newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage aireview configuration",
	}
	cmd.AddCommand(a.newConfigInitCmd(), a.newConfigShowCmd(), a.newConfigSetCmd())
	return cmd
}

func (a *app) newConfigInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default configuration file",
		Args:  cobra.NoArgs,
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			path, err := configPath(cmd)
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				fmt.Fprintf(cmd.ErrOrStderr(), "Config file already exists at %s\n", path)
				return nil
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}

			if _, err := config.Init(path); err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Config file created at %s\n", path)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}

func (a *app) newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			path, err := configPath(cmd)
			if err != nil {
				return err
			}
			if err := config.SetField(path, args[0], args[1]); err != nil {
				return usageError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", args[0], args[1])
			return nil
		}),
	}
}

func (a *app) newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Args:  cobra.NoArgs,
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			v := config.New()
			path, err := configPath(cmd)
			if err != nil {
				return err
			}
			if err := config.ReadFile(v, path); err != nil {
				return usageError(err)
			}
			cfg, err := config.Load(v)
			if err != nil {
				return usageError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", path)
			return printConfig(cmd.OutOrStdout(), cfg.Redacted())
		}),
	}
}

func configPath(cmd *cobra.Command) (string, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		return path, nil
	}
	return config.ConfigPath()
}

func printConfig(w io.Writer, c config.Config) error {
	apiKey := c.APIKey
	if apiKey == "" {
		apiKey = "[not set]"
	}
	rows := [][2]string{
		{config.KeyProvider, c.Provider},
		{config.KeyModel, c.Model},
		{"api_key", apiKey},
		{config.KeyBase, c.Base},
		{config.KeyHead, c.Head},
		{config.KeyBackend, c.Backend},
		{config.KeyReporter, c.Reporter},
		{config.KeyRender, c.Render},
		{config.KeyTimeout, c.Timeout.String()},
		{config.KeyRetries, strconv.Itoa(c.Retries)},
		{config.KeyMaxTokens, strconv.Itoa(c.MaxTokens)},
		{config.KeyTemperature, strconv.FormatFloat(c.Temperature, 'g', -1, 64)},
		{config.KeyRedact, strconv.FormatBool(c.Redact)},
		{config.KeyEndpoint, c.Endpoint},
		{config.KeyLogLevel, c.Log.Level},
		{config.KeyLogFormat, c.Log.Format},
		{config.KeyGitHubOwner, c.GitHub.Owner},
		{config.KeyGitHubRepo, c.GitHub.Repo},
		{config.KeyGitHubPR, strconv.Itoa(c.GitHub.PR)},
		{config.KeyGitHubAPIURL, c.GitHub.APIURL},
	}
	width := 0
	for _, r := range rows {
		width = max(width, len(r[0]))
	}
	keyStyle := lipgloss.NewStyle().Bold(true).Width(width + 2)

	var b strings.Builder
	for _, r := range rows {
		b.WriteString(keyStyle.Render(r[0]))
		b.WriteString(r[1])
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}
