// Package output renders cardchat-cli results as a table, JSON or YAML.
//
// Values that implement Tabular control their own table layout. Anything
// else falls back to JSON when table output is requested.
package output
