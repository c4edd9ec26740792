// Command meshnum drives the distributed node-numbering algorithm across a
// set of simulated ranks for a named forest scenario, and can persist,
// validate, and serve the resulting run.
package main

import "github.com/meshnum/cmd/meshnum/cmd"

func main() {
	cmd.Execute()
}
