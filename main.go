package main

import (
	"github.com/stleox/gqlspan/pkg/cmd"
)

func main() {
	cmd.Execute()
}
