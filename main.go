package main

import (
	"minicc/cmd"
	"os"
)

func main() {
	os.Exit(cmd.Execute())
}
