package main

import "github.com/brogergvhs/kirarank/cmd"

func main() {
	cmd.Execute()
}
