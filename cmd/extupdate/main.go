package main

import (
	"github.com/lanterndata/extupdate/cmd"
)

func main() {
	cmd.Execute()
}
