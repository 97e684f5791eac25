// Package buildinfo provides build information for cardchat binaries.
//
// Values are injected at build time via ldflags:
//
//	go build -ldflags "-X github.com/ShavonHarris-Dev/Digital-Business-Card/internal/infra/buildinfo.Version=v1.0.0"
//
// When a value is not injected, Get falls back to the module and VCS data
// the Go toolchain embeds in the binary.
package buildinfo
