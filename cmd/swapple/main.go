// Command swapple plays the daily word ladder in a terminal, against a
// Swapple server or fully offline with the embedded dictionary.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const releaseVersion = "0.4.0"

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	cfg := &Config{}
	cobra.CheckErr(newCmd(cfg).Execute())
}
