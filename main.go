/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/codecoach/client/cmd"

func main() {
	cmd.Execute()
}
