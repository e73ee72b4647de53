package main

import "f0oster/pneaudit/cli"

func main() {
	cli.Execute()
}
