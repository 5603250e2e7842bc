// cmd/umidemux/main.go
package main

import (
	"umidemux/internal/app"
	"umidemux/internal/appshell"
)

func main() {
	appshell.Main(app.RunContext)
}
