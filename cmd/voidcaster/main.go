package main

import (
	"os"

	"github.com/gnolang/voidcaster/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
