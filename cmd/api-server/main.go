package main

import "dtalks/cmd/api-server/command"

func main() {
	command.Execute()
}
