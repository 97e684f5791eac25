// Package command provides the cardchat-cli command tree, built on
// urfave/cli/v2:
//
//   - token: issue a token from a server, or inspect and verify one offline
//   - chat: ask the assistant a question
//   - system: health and readiness of a server
//   - config: show or change ~/.cardchat/cli.yaml
//
// Results go to the app's Writer in the format chosen with --output.
package command
