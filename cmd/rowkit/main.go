// Command rowkit runs table and row operations for the entity types
// declared in a schema file.
package main

import "github.com/mesh-intelligence/rowkit/internal/cli"

func main() {
	cli.Execute()
}
