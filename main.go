package main

import "github.com/KaramelBytes/earnings-cli/cmd"

func main() {
	cmd.Execute()
}
