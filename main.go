package main

import "github.com/Alijeyrad/fieldcare/cmd"

func main() {
	cmd.Execute()
}
