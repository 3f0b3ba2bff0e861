package main

import "jewelry-admin/internal/cli"

func main() {
	cli.Execute()
}
