// Package confloader provides configuration loading mechanism.
//
// This package implements a configuration loader that merges several
// sources into a typed struct using koanf as the underlying library.
//
// Priority (highest to lowest):
//
//  1. Command-line flags (LoadMap)
//  2. CARDCHAT_* environment variables
//  3. Legacy environment variables (CSRF_SECRET, OPENAI_API_KEY, PORT, ...)
//  4. YAML configuration file
//  5. Default values already present in the target struct
//
// A dotenv file can be read first; it only fills variables that are not
// already set in the process environment.
//
// Watcher reports writes to individual files (config, profile) so the
// server can re-apply settings without a restart.
package confloader
