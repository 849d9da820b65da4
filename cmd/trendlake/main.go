package main

import "github.com/vietddude/trendlake/internal/cli"

func main() {
	cli.Execute()
}
