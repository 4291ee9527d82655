package main

import "github.com/posturease/ms-go-account/cmd"

func main() {
	cmd.Execute()
}
