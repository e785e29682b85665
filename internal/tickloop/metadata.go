package tickloop

import (
	"strconv"
	"strings"
	"time"

	"github.com/tma02/duckyhost/internal/config"
	"github.com/tma02/duckyhost/internal/platform"
)

const lobbyRef = "webfishing_gamelobby"

// BuildLobbyMetadata renders the key/value pairs published to the
// platform's lobby browser, refreshed on creation and every ~20s.
func BuildLobbyMetadata(cfg config.Config, banList []uint64, userCount int, now time.Time) platform.LobbyMetadata {
	lobbyType := "public"
	public := "true"
	if cfg.Unlisted {
		lobbyType = "unlisted"
		public = "false"
	}

	banned := make([]string, len(banList))
	for i, id := range banList {
		banned[i] = strconv.FormatUint(id, 10)
	}

	return platform.LobbyMetadata{
		"lobby_name":           cfg.Name,
		"ref":                  lobbyRef,
		"version":              cfg.GameVersion,
		"code":                 cfg.LobbyCode,
		"tag_talkative":        config.BoolLobbyTag(cfg.TagTalkative),
		"tag_quiet":            config.BoolLobbyTag(cfg.TagQuiet),
		"tag_grinding":         config.BoolLobbyTag(cfg.TagGrinding),
		"tag_chill":            config.BoolLobbyTag(cfg.TagChill),
		"tag_silly":            config.BoolLobbyTag(cfg.TagSilly),
		"tag_hardcore":         config.BoolLobbyTag(cfg.TagHardcore),
		"tag_mature":           config.BoolLobbyTag(cfg.TagMature),
		"tag_modded":           config.BoolLobbyTag(cfg.TagModded),
		"request":              "false",
		"timestamp":            strconv.FormatInt(now.Unix(), 10),
		"type":                 lobbyType,
		"public":               public,
		"banned_players":       strings.Join(banned, ","),
		"cap":                  strconv.FormatUint(uint64(cfg.MaxPlayers), 10),
		"count":                strconv.Itoa(userCount),
		"server_browser_value": "0",
		"lurefilter":           "dedicated",
	}
}
