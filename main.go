package main

import "sheet_display/cmd"

func main() {
	cmd.Execute()
}
