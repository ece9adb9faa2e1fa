package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"axiom/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Get and set configuration values",
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := configValue(cfg, args[0])
		if err != nil {
			return err
		}
		fmt.Println(v)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value and write the config file back.

Keys:
  model.provider, model.name, model.base_url, model.api_key_env,
  model.max_tokens, storage.auto_prune, storage.keep_versions,
  search.context_weight, search.batch_size

Changing the model does not touch stored vectors; searches will warn
about stale artifacts until 'axiom reindex' runs.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setConfigValue(cfg, args[0], args[1]); err != nil {
			return err
		}
		if err := cfg.Save(config.Path(rootDir)); err != nil {
			return err
		}
		fmt.Printf("%s = %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configGetCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func configValue(c *config.Config, key string) (string, error) {
	switch key {
	case "model.provider":
		return c.Model.Provider, nil
	case "model.name":
		return c.Model.Name, nil
	case "model.base_url":
		return c.Model.BaseURL, nil
	case "model.api_key_env":
		return c.Model.APIKeyEnv, nil
	case "model.max_tokens":
		return strconv.Itoa(c.Model.MaxTokens), nil
	case "storage.uri":
		return c.Storage.URI, nil
	case "storage.auto_prune":
		return strconv.FormatBool(c.Storage.AutoPrune), nil
	case "storage.keep_versions":
		return strconv.Itoa(c.Storage.KeepVersions), nil
	case "search.context_weight":
		return strconv.FormatFloat(c.Search.ContextWeight, 'g', -1, 64), nil
	case "search.batch_size":
		return strconv.Itoa(c.Search.BatchSize), nil
	}
	return "", fmt.Errorf("unknown config key %q", key)
}

func setConfigValue(c *config.Config, key, value string) error {
	switch key {
	case "model.provider":
		c.Model.Provider = value
	case "model.name":
		c.Model.Name = value
	case "model.base_url":
		c.Model.BaseURL = value
	case "model.api_key_env":
		c.Model.APIKeyEnv = value
	case "model.max_tokens":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		c.Model.MaxTokens = n
	case "storage.uri":
		c.Storage.URI = value
	case "storage.auto_prune":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		c.Storage.AutoPrune = b
	case "storage.keep_versions":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if n < 1 {
			return fmt.Errorf("%s: must be at least 1", key)
		}
		c.Storage.KeepVersions = n
	case "search.context_weight":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if f < 0 || f > 1 {
			return fmt.Errorf("%s: must be between 0 and 1", key)
		}
		c.Search.ContextWeight = f
	case "search.batch_size":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if n < 1 {
			return fmt.Errorf("%s: must be at least 1", key)
		}
		c.Search.BatchSize = n
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}
