package main

import (
	"primerqc/internal/appshell"
	"primerqc/internal/cli"
)

func main() { appshell.Main(cli.Run) }
