// Copyright © 2024 The ELPS authors

package main

import "github.com/luthersystems/wphooks/cmd"

func main() {
	cmd.Execute()
}
