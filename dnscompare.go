package main

import "github.com/tantalor93/dnscompare/cmd"

func main() {
	cmd.Execute()
}
