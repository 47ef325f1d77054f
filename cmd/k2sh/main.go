package main

import (
	"github.com/k2shbwi/k2sh/cmd/k2sh/cmd"
)

func main() {
	cmd.Execute()
}
