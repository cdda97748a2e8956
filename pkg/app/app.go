// Package app defines the contract between cmd entrypoints and the long
// running components they start.
package app

// Runner is a component that runs until shutdown.
type Runner interface {
	Run() error
}
