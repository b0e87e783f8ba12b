package main

import "hrledger/internal/app/server"

func main() {
	server.Run()
}
