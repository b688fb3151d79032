package main

import (
	log "github.com/sirupsen/logrus"

	"hiloActivator/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.WithError(err).Fatalf("cannot execute command")
	}
}
