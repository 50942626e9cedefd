package main

import "tunemart/cmd"

func main() {
	cmd.Execute()
}
