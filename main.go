/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/adboard/server/cmd"

func main() {
	cmd.Execute()
}
