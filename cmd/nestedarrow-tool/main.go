package main

import "github.com/polarsignals/nestedarrow/cmd/nestedarrow-tool/cmd"

func main() {
	cmd.Execute()
}
