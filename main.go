package main

import "ankisync/cmd"

func main() {
	cmd.Execute()
}
