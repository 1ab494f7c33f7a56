// Package internal holds values shared by the executables.
package internal

// Version is the release of the executables.
const Version = "0.1.0"
