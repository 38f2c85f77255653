// Package cli parses command-line arguments, merges them with environment
// variables and the optional config file, and maps usage errors to exit
// codes. It translates user input into the application's configuration.
package cli
