// Package main is the entry point for mongocheck.
package main

import (
	"github.com/mrlynn/mongocheck/cmd/mongocheck/app"
)

func main() {
	app.NewApp().Run()
}
