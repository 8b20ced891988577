package main

import "github.com/vanthabot/vantha/cmd"

func main() {
	cmd.Execute()
}
