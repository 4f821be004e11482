// Package consts holds build-time constants
package consts

// Version is the release version, set at build time with -ldflags "-X github.com/johnstarich/tally/consts.Version=..."
var Version = "dev"
