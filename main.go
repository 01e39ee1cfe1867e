// The main package for the rk9crawler executable.
package main

import (
	"github.com/ptcgtools/rk9-crawler/cmd"
)

func main() {
	cmd.Execute()
}
