package main

import (
	"btc-price-alerts/internal/cli"
)

func main() {
	cli.Execute()
}
