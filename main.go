package main

import "github.com/jsphweid/mirlive/cmd"

func main() {
	cmd.Execute()
}
