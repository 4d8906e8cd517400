package main

import "github.com/PaulFidika/donorkit/cmd/donorkit/cmd"

func main() {
	cmd.Execute()
}
