package main

import "course-marketplace/cmd"

func main() {
	cmd.Execute()
}
