package main

import "face-attendance/internal/cli"

func main() {
	cli.Execute()
}
