// Package config loads the server's lobby/tag/ban-list configuration,
// applying per-field defaults the way the original Rust server's
// serde defaults did.
package config

import (
	"errors"
	"io/fs"
	"math/rand"
	"strings"

	"github.com/spf13/viper"
)

// Config is the value-populated configuration record spec.md §6 treats
// as an external collaborator's output; this package is that
// collaborator.
type Config struct {
	Name        string   `mapstructure:"name"`
	MOTD        string   `mapstructure:"motd"`
	GameVersion string   `mapstructure:"game_version"`
	LobbyCode   string   `mapstructure:"lobby_code"`
	MaxPlayers  uint32   `mapstructure:"max_players"`
	Unlisted    bool     `mapstructure:"unlisted"`

	TagTalkative bool `mapstructure:"tag_talkative"`
	TagQuiet     bool `mapstructure:"tag_quiet"`
	TagGrinding  bool `mapstructure:"tag_grinding"`
	TagChill     bool `mapstructure:"tag_chill"`
	TagSilly     bool `mapstructure:"tag_silly"`
	TagHardcore  bool `mapstructure:"tag_hardcore"`
	TagMature    bool `mapstructure:"tag_mature"`
	TagModded    bool `mapstructure:"tag_modded"`

	BanList []uint64 `mapstructure:"ban_list"`
}

const lobbyCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomLobbyCode generates a 6-character uppercased alphanumeric code,
// the default() used when no lobby_code is configured.
func RandomLobbyCode() string {
	var b strings.Builder
	for i := 0; i < 6; i++ {
		b.WriteByte(lobbyCodeAlphabet[rand.Intn(len(lobbyCodeAlphabet))])
	}
	return b.String()
}

// Default returns the configuration defaults, matching the original
// server's config.rs field-by-field.
func Default() Config {
	return Config{
		Name:         "A Ducky Server",
		MOTD:         "This lobby is powered by Ducky.\nType !help to see commands.",
		GameVersion:  "1.11",
		LobbyCode:    RandomLobbyCode(),
		MaxPlayers:   12,
		Unlisted:     false,
		TagTalkative: false,
		TagQuiet:     false,
		TagGrinding:  false,
		TagChill:     false,
		TagSilly:     false,
		TagHardcore:  false,
		TagMature:    false,
		TagModded:    true,
		BanList:      nil,
	}
}

// Load reads configuration from path (if it exists) via viper,
// layering it over Default() so a missing file, or a file missing
// individual fields, falls back to defaults field-by-field.
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("name", cfg.Name)
	v.SetDefault("motd", cfg.MOTD)
	v.SetDefault("game_version", cfg.GameVersion)
	v.SetDefault("lobby_code", cfg.LobbyCode)
	v.SetDefault("max_players", cfg.MaxPlayers)
	v.SetDefault("unlisted", cfg.Unlisted)
	v.SetDefault("tag_talkative", cfg.TagTalkative)
	v.SetDefault("tag_quiet", cfg.TagQuiet)
	v.SetDefault("tag_grinding", cfg.TagGrinding)
	v.SetDefault("tag_chill", cfg.TagChill)
	v.SetDefault("tag_silly", cfg.TagSilly)
	v.SetDefault("tag_hardcore", cfg.TagHardcore)
	v.SetDefault("tag_mature", cfg.TagMature)
	v.SetDefault("tag_modded", cfg.TagModded)
	v.SetDefault("ban_list", cfg.BanList)

	if err := v.ReadInConfig(); err != nil {
		_, searchNotFound := err.(viper.ConfigFileNotFoundError)
		if !searchNotFound && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
		// Missing file: fall through with defaults only.
	}

	var out Config
	if err := v.Unmarshal(&out); err != nil {
		return Config{}, err
	}
	return out, nil
}

// BoolLobbyTag renders a tag boolean the way lobby metadata expects it
// on the wire: "1" or "0".
func BoolLobbyTag(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
