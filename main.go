package main

import "yut/cmd"

func main() {
	cmd.Execute()
}
