package main // Entry point package

import (
	"log"

	"github.com/iliyamo/venue-ops/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
