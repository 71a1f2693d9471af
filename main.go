package main

import "github.com/attendbot/attend-admin/cmd"

func main() {
	cmd.Execute()
}
