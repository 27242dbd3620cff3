package main

import (
	"fmt"
	"os"

	"pricewatch-backend/cmd/pricewatch-cli/cmd"
)

func main() {
	dbFile, ok := os.LookupEnv("PRICEWATCH_DB")
	if !ok {
		fmt.Println("You should specify the path to the tracker database in the environment variable PRICEWATCH_DB.")
		os.Exit(1)
	}
	cmd.DbFile = dbFile

	cmd.Execute()
}
