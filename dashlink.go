package main

import (
	"log"
	"os"

	"github.com/cpacia/dashlink/cmd"
	"github.com/jessevdk/go-flags"
)

func main() {
	parser := flags.NewParser(nil, flags.Default)

	_, err := parser.AddCommand("start",
		"start the dashlink node",
		"The start command starts the notification engine, the dashboard API and the device transport endpoint",
		&cmd.Start{})
	if err != nil {
		log.Fatal(err)
	}
	_, err = parser.AddCommand("init",
		"initialize a dashlink data directory",
		"The init command creates and initializes a new data directory and database, optionally seeding preferences from a YAML file.",
		&cmd.Init{})
	if err != nil {
		log.Fatal(err)
	}

	if _, err := parser.Parse(); err != nil {
		os.Exit(1)
	}
}
