/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/csvimport/import-wizard/cmd"

func main() {
	cmd.Execute()
}
