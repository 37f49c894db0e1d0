package main

import "github.com/pfrederiksen/diz-scraper/internal/cli"

func main() {
	cli.Execute()
}
