package main

import "github.com/rollcall/server/cmd"

func main() {
	cmd.Execute()
}
