package main

import "github.com/VoxDroid/nycschools/cmd"

func main() {
	cmd.Execute()
}
