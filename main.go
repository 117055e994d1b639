package main

import "github.com/llehouerou/nebula/internal/cli"

func main() {
	cli.Execute()
}
