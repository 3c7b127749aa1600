package main

import "github.com/viktsys/playerstats/cmd"

func main() {
	cmd.Execute()
}
