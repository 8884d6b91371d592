// Command incomecast predicts whether income exceeds a threshold from
// socio-demographic attributes.
package main

import (
	"os"

	"github.com/leapstack-labs/incomecast/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
