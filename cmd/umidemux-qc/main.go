// cmd/umidemux-qc/main.go
package main

import (
	"umidemux/internal/appshell"
	"umidemux/internal/qcapp"
)

func main() {
	appshell.Main(qcapp.RunContext)
}
