package main

import "github.com/llehouerou/wavesplay/cmd"

func main() {
	cmd.Execute()
}
