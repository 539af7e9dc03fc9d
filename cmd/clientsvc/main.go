package main

import "clientsvc/cmd/clientsvc/cmds"

func main() {
	cmds.Execute()
}
