// Package scenario runs declarative end-to-end mutation scenarios.
//
// A scenario is a YAML file describing an initial file, a sequence of
// byte mutations and the expected outcome of each. The runner materializes
// the file in a scratch directory, drives every step through the full
// mutation pipeline and checks the final bytes and the absence of stray
// .backup and .draft artifacts.
//
// Scenario results are compared against golden files with goldie:
//
//	go test ./internal/scenario -update
//
// regenerates the golden files after an intentional behavior change.
package scenario
