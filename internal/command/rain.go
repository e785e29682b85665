package command

import (
	"fmt"
	"time"

	"github.com/tma02/duckyhost/internal/actorstate"
	"github.com/tma02/duckyhost/internal/runtime"
)

// handleRain spawns a user-commanded rain cloud over the sender's
// player actor. The command path runs through the host's own
// authority, so the actor-creation check is run with isHost=true even
// though the sender is an ordinary lobby member.
func handleRain(game *runtime.Game, _ bool, ctx Context) {
	player, ok := game.Actors.PlayerOf(ctx.Sender)
	if !ok {
		game.Host.SendChat(ctx.Sender, "Failed. No Player character found.")
		return
	}

	if !game.Actors.UserCanCreate(ctx.Sender, true, actorstate.Raincloud) {
		game.Host.SendChat(ctx.Sender, "Failed. You have too many props!")
		return
	}

	if !game.Spawner.CanSpawnUserActor(actorstate.Raincloud) {
		if deadline, ok := game.Spawner.NextUserSpawnDeadline(); ok {
			game.Host.SendChat(ctx.Sender, fmt.Sprintf(
				"Someone already spawned a rain cloud. Please wait %s.",
				formatTimeoutFromNow(deadline)))
		} else {
			game.Host.SendChat(ctx.Sender, "Someone already spawned a rain cloud. Please wait for it to despawn.")
		}
		return
	}

	position := player.Position
	position.Y = 42.0
	game.Spawner.SpawnUserRaincloud("main_zone", position)

	game.Host.SendChat(ctx.Sender, "Spawned rain cloud.")
}

func formatTimeoutFromNow(deadline time.Time) string {
	d := time.Until(deadline)
	if d < 0 {
		d = 0
	}
	secs := int64(d.Seconds())
	switch {
	case secs < 60:
		return fmt.Sprintf("%ds", secs)
	case secs < 3600:
		return fmt.Sprintf("%dm %ds", secs/60, secs%60)
	default:
		return fmt.Sprintf("%dh %dm %ds", secs/3600, (secs%3600)/60, secs%60)
	}
}
