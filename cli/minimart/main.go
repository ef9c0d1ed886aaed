package main

import (
	"os"

	minimartcmder "github.com/minimartco/minimart/cmd/minimart"
)

func main() {
	cmd := minimartcmder.NewMinimartCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
