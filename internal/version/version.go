// Package version holds the build version, set at link time:
//
//	go build -ldflags "-X primerqc/internal/version.Version=v1.2.0" ./cmd/primerqc
package version

var Version = "dev"
