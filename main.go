package main

import (
	"os"

	"github.com/siga-admin/siga/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
