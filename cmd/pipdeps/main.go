package main

import (
	"os"

	"github.com/katsuya-horiuchi/pip-dependency-management/internal/cmd"
)

func main() {
	os.Exit(cmd.RunWithArgs(os.Args[1:], pipdepsVersion))
}
