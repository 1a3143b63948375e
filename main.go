package main

import "deskforge/internal/deskforge"

func main() {
	deskforge.Main()
}
