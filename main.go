package main

import "github.com/distillab/aspenplus/cmd/aspenplus"

func main() {
	aspenplus.Main()
}
