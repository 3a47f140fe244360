package main

import "github.com/techfulness/getsticky/cmd"

func main() {
	cmd.Execute()
}
