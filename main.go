package main

import "github.com/frahmantamala/fuel-station-management/cmd"

func main() {
	cmd.Execute()
}
