package main

import "dresscutur/backend/internal/cli"

func main() {
	cli.Execute()
}
