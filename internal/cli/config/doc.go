// Package config provides cardchat-cli's on-disk preferences.
//
// The file lives at ~/.cardchat/cli.yaml and holds the default server
// and output format. Flags and CARDCHAT_SERVER take precedence.
package config
