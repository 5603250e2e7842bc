// cmd/umidemux-umi/main.go
package main

import (
	"umidemux/internal/appshell"
	"umidemux/internal/umiapp"
)

func main() {
	appshell.Main(umiapp.RunContext)
}
