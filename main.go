package main

import "marketplace/cmd"

func main() {
	cmd.Execute()
}
