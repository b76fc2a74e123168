package main

import "github.com/JonMunkholm/sqlask/cmd"

func main() {
	cmd.Execute()
}
