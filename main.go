package main

import "hotbackup/cmd"

func main() {
	cmd.Execute()
}
