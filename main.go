package main

import (
	"github.com/latienda/backend/cmd"
)

func main() {
	cmd.Start()
}
