/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/alvera-ai/interoperability-template-generator/cmd"

func main() {
	cmd.Execute()
}
