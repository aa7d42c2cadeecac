package main

import "github.com/javi11/pngstash/cmd/pngstash/cmd"

func main() {
	cmd.Execute()
}
