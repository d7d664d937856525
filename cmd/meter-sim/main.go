// cmd/meter-sim/main.go
package main

import "devicecode-go/cmd/meter-sim/cmd"

func main() {
	cmd.Execute()
}
