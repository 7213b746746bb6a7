// Package cli parses command-line arguments into an application
// configuration, keeping flag handling out of the main package.
package cli
