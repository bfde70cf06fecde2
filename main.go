package main

import (
	_ "github.com/joho/godotenv/autoload"

	"sheetfolio/cmd"
)

func main() {
	cmd.Execute()
}
