package main

import (
	"nanoprep/internal/app"
	"nanoprep/internal/appshell"
)

func main() {
	appshell.Main(app.RunContext)
}
