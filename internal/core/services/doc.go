// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// All board state is mutated on a single event loop (Loop). Generation
// requests and uploads run on their own goroutines and post their results
// back to the loop, so stores never see two writers at once.
//
// Services are pure Go with no CGO.
package services
