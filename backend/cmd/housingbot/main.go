// backend/cmd/housingbot/main.go
package main

import "github.com/ps-vitor/housingconnect-bot/backend/cmd/housingbot/commands"

func main() {
	commands.Execute()
}
