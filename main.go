/*
Copyright © 2026 Glossopoeia
*/
package main

import (
	"github.com/glossopoeia/hazard/cmd"
)

func main() {
	cmd.Execute()
}
