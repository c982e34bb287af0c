package main

import "sales_admin/cmd"

func main() {
	cmd.Execute()
}
