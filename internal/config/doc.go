// Package config loads aireview configuration through viper.
//
// Precedence (highest to lowest):
//  1. CLI flags bound with [viper.Viper.BindPFlag]
//  2. Environment variables (AIREVIEW_PROVIDER, AIREVIEW_BASE, AIREVIEW_LOG_LEVEL, etc.)
//  3. Config file ($XDG_CONFIG_HOME/aireview/config.yaml)
//  4. Built-in defaults
//
// Credentials are never read from the config file. [Load] resolves them from
// the provider's environment variables (GOOGLE_API_KEY for Gemini, and so on)
// and GITHUB_TOKEN for the GitHub reporter.
//
// Use [New] and [ReadFile] to prepare a viper instance, [Load] to obtain a
// validated [Config], [Init] to write a default config file, and [SetField]
// to update a single key.
package config
