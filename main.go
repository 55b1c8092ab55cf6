package main

import "github.com/INTARYNX/sqlwayfarer-sub001/cmd"

func main() {
	cmd.Execute()
}
