package main

import "github.com/frahmantamala/admin-management/cmd"

func main() {
	cmd.Execute()
}
