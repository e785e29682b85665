package command

import "github.com/tma02/duckyhost/internal/runtime"

func handleHelp(game *runtime.Game, _ bool, ctx Context) {
	game.Host.SendChat(ctx.Sender, "Available commands: !help, !rain")
}
