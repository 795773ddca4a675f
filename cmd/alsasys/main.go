package main

import "github.com/goplus/alsasys/cmd/alsasys/internal"

func main() {
	internal.Execute()
}
